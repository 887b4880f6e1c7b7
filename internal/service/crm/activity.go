package crm

import (
	"context"
	"log/slog"
	"time"

	"folio/internal/config"
	models "folio/internal/domain/models/crm"
	crmRepo "folio/internal/domain/repositories/crm"
	crmSvc "folio/internal/domain/services/crm"
)

// ActivityLog records and lists timeline entries
type ActivityLog struct {
	activityRepo crmRepo.ActivityRepository
	logger       *slog.Logger
}

// NewActivityService creates the timeline service. It satisfies both
// ActivityRecorder and ActivityService.
func NewActivityService(activityRepo crmRepo.ActivityRepository, logger *slog.Logger) *ActivityLog {
	return &ActivityLog{activityRepo: activityRepo, logger: logger}
}

var (
	_ crmSvc.ActivityRecorder = (*ActivityLog)(nil)
	_ crmSvc.ActivityService  = (*ActivityLog)(nil)
)

// Record writes a timeline entry. Failures are logged and swallowed so the
// operation that triggered the entry is never affected.
func (s *ActivityLog) Record(ctx context.Context, activity *models.Activity) {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}

	// The parent request may already be finishing; the entry should still land
	ctx = context.WithoutCancel(ctx)

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity",
			"kind", activity.Kind,
			"owner_id", activity.OwnerID,
			"error", err,
		)
	}
}

// ListActivity returns recent entries, clamping limit to a sane range
func (s *ActivityLog) ListActivity(ctx context.Context, userID string, clientID *string, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = config.DefaultActivityLimit
	}
	if limit > config.MaxActivityLimit {
		limit = config.MaxActivityLimit
	}
	return s.activityRepo.List(ctx, userID, clientID, limit)
}
