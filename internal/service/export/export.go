// Package export mirrors every user's records into a spreadsheet so farm
// owners can work with them outside the app.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/hatchlog/internal/dates"
	"github.com/mamadbah2/hatchlog/internal/domain/models"
	"github.com/mamadbah2/hatchlog/internal/engine"
	repo "github.com/mamadbah2/hatchlog/internal/repository/sheets"
)

const (
	IncubationsRange = "Incubations!A:J"
	MedicationsRange = "Medications!A:G"
	FeedingsRange    = "Feedings!A:G"
	ExportsRange     = "Exports!A:F"
)

var (
	incubationHeader = []interface{}{"id", "user", "email", "batch", "breed", "eggs", "start", "hatch", "status", "days left"}
	medicationHeader = []interface{}{"id", "user", "email", "name", "given", "next", "notes"}
	feedingHeader    = []interface{}{"id", "user", "email", "date", "type", "amount kg", "notes"}
)

// UserSource lists the accounts to export.
type UserSource interface {
	Users(ctx context.Context) ([]models.User, error)
}

// SnapshotSource yields a user's current records.
type SnapshotSource interface {
	Snapshot(ctx context.Context, userID string) (*engine.Snapshot, error)
	Now() time.Time
}

// Result counts what a run exported.
type Result struct {
	Users       int
	Incubations int
	Medications int
	Feedings    int
}

// Service rewrites the record sheets on every run and logs the run.
type Service struct {
	repo      repo.Repository
	users     UserSource
	snapshots SnapshotSource
	logger    *zap.Logger
}

// NewService wires an export job.
func NewService(repository repo.Repository, users UserSource, snapshots SnapshotSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, users: users, snapshots: snapshots, logger: logger}
}

// Run exports every user's records. Users whose records fail to load are
// skipped and reported in the returned error; the sheets are still written.
func (s *Service) Run(ctx context.Context) (Result, error) {
	users, err := s.users.Users(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list users: %w", err)
	}

	now := s.snapshots.Now()
	incRows := [][]interface{}{incubationHeader}
	medRows := [][]interface{}{medicationHeader}
	feedRows := [][]interface{}{feedingHeader}

	var (
		res     Result
		skipped []error
	)
	for _, u := range users {
		snap, err := s.snapshots.Snapshot(ctx, u.ID)
		if err != nil {
			s.logger.Warn("skip user in export", zap.String("user_id", u.ID), zap.Error(err))
			skipped = append(skipped, fmt.Errorf("user %s: %w", u.ID, err))
			continue
		}
		res.Users++

		for _, inc := range snap.Incubations {
			incRows = append(incRows, []interface{}{
				inc.ID, u.Name, u.Email, inc.BatchName, inc.Breed, inc.EggCount,
				day(inc.StartDate, now), day(inc.HatchDate, now), string(inc.Status), engine.DaysLeft(inc, now),
			})
		}
		for _, med := range snap.Medications {
			next := ""
			if med.NextSchedule != nil {
				next = day(*med.NextSchedule, now)
			}
			medRows = append(medRows, []interface{}{
				med.ID, u.Name, u.Email, med.Name, day(med.DateGiven, now), next, med.Notes,
			})
		}
		for _, f := range snap.Feedings {
			feedRows = append(feedRows, []interface{}{
				f.ID, u.Name, u.Email, day(f.Date, now), f.FeedType, f.Amount, f.Notes,
			})
		}
	}
	res.Incubations = len(incRows) - 1
	res.Medications = len(medRows) - 1
	res.Feedings = len(feedRows) - 1

	for _, sheet := range []struct {
		rng  string
		rows [][]interface{}
	}{
		{IncubationsRange, incRows},
		{MedicationsRange, medRows},
		{FeedingsRange, feedRows},
	} {
		if err := s.repo.ReplaceRange(ctx, sheet.rng, sheet.rows); err != nil {
			return res, fmt.Errorf("export %s: %w", sheet.rng, err)
		}
	}

	logRow := []interface{}{now.Format(time.RFC3339), res.Users, res.Incubations, res.Medications, res.Feedings, len(skipped)}
	if err := s.repo.AppendRow(ctx, ExportsRange, logRow); err != nil {
		return res, fmt.Errorf("log export: %w", err)
	}

	s.logger.Info("records exported",
		zap.Int("users", res.Users),
		zap.Int("incubations", res.Incubations),
		zap.Int("medications", res.Medications),
		zap.Int("feedings", res.Feedings))
	return res, errors.Join(skipped...)
}

func day(in dates.Instant, now time.Time) string {
	if in.IsZero() {
		return ""
	}
	return in.In(now.Location()).Format(dates.DateLayout)
}
