package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/greencycle/greencycle-go/internal/metrics"
	"github.com/greencycle/greencycle-go/internal/model"
)

// ErrInvalidReport is returned when a submitted report is missing required data.
var ErrInvalidReport = errors.New("invalid dump report")

// dumpReportPoints is passed along with the dump_report activity; the
// ledger ignores it for that kind.
const dumpReportPoints = 10

type ReportService struct {
	reports ReportStore
	ledger  *ScoreLedger
	log     zerolog.Logger
}

func NewReportService(reports ReportStore, ledger *ScoreLedger, log zerolog.Logger) *ReportService {
	return &ReportService{reports: reports, ledger: ledger, log: log}
}

// Submit stores a dump report and credits the reporter with a dump_report
// activity. Once the report is stored, a failure to credit the reporter is
// logged and does not fail the submission.
func (s *ReportService) Submit(ctx context.Context, req model.DumpReportRequest) (*model.DumpReport, error) {
	if strings.TrimSpace(req.ReportType) == "" {
		return nil, fmt.Errorf("%w: reportType is required", ErrInvalidReport)
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, fmt.Errorf("%w: latitude and longitude must be given together", ErrInvalidReport)
	}

	saved, err := s.reports.Save(ctx, &model.DumpReport{
		UserID:      req.UserID,
		PhotoURL:    req.PhotoURL,
		ReportType:  strings.TrimSpace(req.ReportType),
		Description: req.Description,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		return nil, fmt.Errorf("save dump report: %w", err)
	}
	metrics.DumpReportsSubmitted.Inc()

	if err := s.ledger.RecordActivity(ctx, req.UserID, ActivityDumpReport, dumpReportPoints); err != nil {
		s.log.Error().Err(err).Int64("report_id", saved.ID).Int64("user_id", req.UserID).
			Msg("dump report stored but score update failed")
	}

	return saved, nil
}

// List returns every stored report.
func (s *ReportService) List(ctx context.Context) ([]model.DumpReport, error) {
	reports, err := s.reports.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []model.DumpReport{}
	}
	return reports, nil
}
