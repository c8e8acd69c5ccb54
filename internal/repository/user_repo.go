package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greencycle/greencycle-go/internal/model"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("record conflicts with an existing one")
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Counters are read through COALESCE so rows written before the NOT NULL
// migration still read as zero.
const userColumns = `
	id, email, name, password_hash, roles, wallet_address, created_at, updated_at,
	COALESCE(total_score, 0), COALESCE(dumps_reported, 0), COALESCE(spots_adopted, 0),
	COALESCE(marketplace_sales, 0), COALESCE(cleanup_sessions, 0), COALESCE(cycle_tokens_earned, 0)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Roles, &u.WalletAddress,
		&u.CreatedAt, &u.UpdatedAt,
		&u.TotalScore, &u.DumpsReported, &u.SpotsAdopted,
		&u.MarketplaceSales, &u.CleanupSessions, &u.CycleTokensEarned,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// FindByID returns a single user by primary key.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

// FindByEmail returns a single user by login email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

// FindAll returns every user in primary-key order.
func (r *UserRepo) FindAll(ctx context.Context) ([]model.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
}

// FindAllOrderedByScoreDesc returns every user ordered by total score,
// highest first, ties broken by ascending id.
func (r *UserRepo) FindAllOrderedByScoreDesc(ctx context.Context) ([]model.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY COALESCE(total_score, 0) DESC, id ASC`)
}

func (r *UserRepo) queryUsers(ctx context.Context, query string) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Save inserts the user when it has no id yet, otherwise overwrites the
// stored row. The returned user carries the database-assigned fields.
func (r *UserRepo) Save(ctx context.Context, u *model.User) (*model.User, error) {
	saved := *u
	if saved.Roles == nil {
		saved.Roles = []string{}
	}

	var err error
	if saved.ID == 0 {
		err = r.pool.QueryRow(ctx, `
			INSERT INTO users (email, name, password_hash, roles, wallet_address,
			                   total_score, dumps_reported, spots_adopted,
			                   marketplace_sales, cleanup_sessions, cycle_tokens_earned)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, created_at, updated_at`,
			saved.Email, saved.Name, saved.PasswordHash, saved.Roles, saved.WalletAddress,
			saved.TotalScore, saved.DumpsReported, saved.SpotsAdopted,
			saved.MarketplaceSales, saved.CleanupSessions, saved.CycleTokensEarned,
		).Scan(&saved.ID, &saved.CreatedAt, &saved.UpdatedAt)
	} else {
		err = r.pool.QueryRow(ctx, `
			UPDATE users SET
				email = $2, name = $3, password_hash = $4, roles = $5, wallet_address = $6,
				total_score = $7, dumps_reported = $8, spots_adopted = $9,
				marketplace_sales = $10, cleanup_sessions = $11, cycle_tokens_earned = $12,
				updated_at = NOW()
			WHERE id = $1
			RETURNING created_at, updated_at`,
			saved.ID, saved.Email, saved.Name, saved.PasswordHash, saved.Roles, saved.WalletAddress,
			saved.TotalScore, saved.DumpsReported, saved.SpotsAdopted,
			saved.MarketplaceSales, saved.CleanupSessions, saved.CycleTokensEarned,
		).Scan(&saved.CreatedAt, &saved.UpdatedAt)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("save user %q: %w", saved.Email, ErrConflict)
		}
		return nil, err
	}
	return &saved, nil
}

// Count returns the number of registered users.
func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
