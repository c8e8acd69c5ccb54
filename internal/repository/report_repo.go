package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greencycle/greencycle-go/internal/model"
)

type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// Save inserts a new dump report and returns it with its id and creation time.
func (r *ReportRepo) Save(ctx context.Context, report *model.DumpReport) (*model.DumpReport, error) {
	saved := *report
	err := r.pool.QueryRow(ctx, `
		INSERT INTO dump_reports (user_id, photo_url, report_type, description, location, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		saved.UserID, saved.PhotoURL, saved.ReportType, saved.Description,
		saved.Location, saved.Latitude, saved.Longitude,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// FindAll returns every dump report in insertion order.
func (r *ReportRepo) FindAll(ctx context.Context) ([]model.DumpReport, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, photo_url, report_type, description, location,
		       latitude, longitude, created_at
		FROM dump_reports
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []model.DumpReport
	for rows.Next() {
		var d model.DumpReport
		err := rows.Scan(
			&d.ID, &d.UserID, &d.PhotoURL, &d.ReportType, &d.Description, &d.Location,
			&d.Latitude, &d.Longitude, &d.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		reports = append(reports, d)
	}
	return reports, rows.Err()
}
