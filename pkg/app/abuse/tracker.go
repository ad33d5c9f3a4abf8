package abuse

import (
	"context"
	"sync"
	"time"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/common"
	domain "github.com/dinesh-git17/debate-lab-sub000/pkg/domain/abuse"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/prometheus"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	tempBanFlagThreshold = 3
	permBanFlagThreshold = 10

	contentViolationWindow    = 24 * time.Hour
	contentViolationThreshold = 3
	injectionWindow           = 24 * time.Hour
	injectionThreshold        = 2
	rateLimitWindow           = time.Hour
	rateLimitThreshold        = 10
)

//go:generate mockery --name=Tracker --dir=. --output=./mocks --filename=abuse_tracker_mock.go --case=underscore --with-expecter

// Tracker accumulates a per-identity abuse history and escalates it into
// temporary and permanent bans. All write paths are best-effort: a store
// failure is logged and never fails the caller's request.
type Tracker interface {
	TrackVisit(ctx context.Context, ipHash, endpoint string, metadata map[string]any) (*domain.Ban, error)
	FlagIP(ctx context.Context, ipHash, reason string) error
	BanIP(ctx context.Context, ipHash string, reason domain.BanReason, opts BanOptions) (*domain.Ban, error)
	CheckBan(ctx context.Context, ipHash string) (*domain.Ban, error)
	UnbanIP(ctx context.Context, ipHash string) error
	RecordEvent(ctx context.Context, event Event) error
	RecentEvents(ipHash string) []domain.LogEntry
}

// BanOptions overrides the reason-derived defaults of a new ban.
type BanOptions struct {
	Duration    *time.Duration // nil keeps the reason default; 0 means permanent
	Description string
	CreatedBy   string
}

// Event is one abuse observation to append to the log.
type Event struct {
	IPHash    string
	Type      domain.EventType
	Severity  domain.EventSeverity
	Endpoint  string
	Details   map[string]any
}

type tracker struct {
	tracking domain.TrackingRepository
	bans     domain.BanRepository
	logs     domain.LogRepository
	logger   *logrus.Logger
	now      func() time.Time

	mu     sync.Mutex
	recent []domain.LogEntry
}

type Opts struct {
	TimeProvider func() time.Time
}

func NewTracker(
	tracking domain.TrackingRepository,
	bans domain.BanRepository,
	logs domain.LogRepository,
	logger *logrus.Logger,
	opts Opts,
) Tracker {
	now := opts.TimeProvider
	if now == nil {
		now = time.Now
	}
	return &tracker{
		tracking: tracking,
		bans:     bans,
		logs:     logs,
		logger:   logger,
		now:      now,
	}
}

// TrackVisit records one sighting of an identity. When the identity is
// banned, the visit is logged as a bypass attempt and the tracking record is
// left untouched. The returned ban is nil for unbanned identities.
func (t *tracker) TrackVisit(ctx context.Context, ipHash, endpoint string, metadata map[string]any) (*domain.Ban, error) {
	ban, err := t.CheckBan(ctx, ipHash)
	if err != nil {
		t.logger.WithError(err).WithField("ip_hash", ipHash).Error("ban lookup failed, skipping visit tracking")
		return nil, nil
	}
	if ban != nil {
		if recErr := t.RecordEvent(ctx, Event{
			IPHash:   ipHash,
			Type:     domain.EventBanBypassAttempt,
			Severity: domain.EventSeverityHigh,
			Endpoint: endpoint,
			Details:  map[string]any{"ban_id": ban.ID.String(), "ban_reason": string(ban.Reason)},
		}); recErr != nil {
			t.logger.WithError(recErr).Warn("failed to log ban bypass attempt")
		}
		return ban, nil
	}

	now := t.now()
	record, err := t.tracking.GetByHash(ctx, ipHash)
	if err != nil {
		t.logger.WithError(err).WithField("ip_hash", ipHash).Error("tracking lookup failed, skipping visit tracking")
		return nil, nil
	}
	if record == nil {
		record = &domain.TrackingRecord{
			IPHash:     ipHash,
			FirstSeen:  now,
			VisitCount: 0,
		}
	}
	record.VisitCount++
	record.LastSeen = now
	record.MergeMetadata(metadata)

	if err := t.tracking.Upsert(ctx, record); err != nil {
		t.logger.WithError(err).WithField("ip_hash", ipHash).Error("failed to persist tracking record")
	}
	return nil, nil
}

// FlagIP adds one flag to the identity and runs the escalation thresholds.
// Crossing both thresholds in one call yields the permanent ban only.
func (t *tracker) FlagIP(ctx context.Context, ipHash, reason string) error {
	now := t.now()
	record, err := t.tracking.GetByHash(ctx, ipHash)
	if err != nil {
		return err
	}
	if record == nil {
		record = &domain.TrackingRecord{
			IPHash:    ipHash,
			FirstSeen: now,
		}
	}
	record.FlagCount++
	record.IsFlagged = true
	record.LastSeen = now
	if !record.HasReason(reason) {
		record.FlagReasons = append(record.FlagReasons, reason)
	}
	if err := t.tracking.Upsert(ctx, record); err != nil {
		return err
	}

	if recErr := t.RecordEvent(ctx, Event{
		IPHash:   ipHash,
		Type:     domain.EventManualFlag,
		Severity: domain.EventSeverityMedium,
		Details:  map[string]any{"reason": reason, "flag_count": record.FlagCount},
	}); recErr != nil {
		t.logger.WithError(recErr).Warn("failed to log flag event")
	}

	switch {
	case record.FlagCount >= permBanFlagThreshold:
		err = t.escalateToPermanent(ctx, ipHash)
	case record.FlagCount >= tempBanFlagThreshold:
		day := 24 * time.Hour
		_, err = t.BanIP(ctx, ipHash, domain.BanReasonContentViolation, BanOptions{
			Duration:    &day,
			Description: "flag count reached temporary-ban threshold",
			CreatedBy:   "system",
		})
	}
	if err != nil {
		t.logger.WithError(err).WithField("ip_hash", ipHash).Error("flag escalation ban failed")
	}
	return nil
}

// escalateToPermanent upgrades the identity to a permanent ban. A temporary
// ban still in force is deactivated first so the upgrade is not swallowed by
// BanIP's idempotency check; one active ban per hash holds throughout.
func (t *tracker) escalateToPermanent(ctx context.Context, ipHash string) error {
	existing, err := t.CheckBan(ctx, ipHash)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.BanType == domain.BanTypePermanent {
			return nil
		}
		if err := t.bans.Deactivate(ctx, existing.ID.String()); err != nil {
			return err
		}
		prometheus.ActiveBans.WithLabelValues(string(existing.BanType)).Dec()
	}

	permanent := time.Duration(0)
	_, err = t.BanIP(ctx, ipHash, domain.BanReasonManual, BanOptions{
		Duration:    &permanent,
		Description: "flag count reached permanent-ban threshold",
		CreatedBy:   "system",
	})
	return err
}

// BanIP creates a ban unless the identity already has an active one, in
// which case the existing ban is returned unchanged.
func (t *tracker) BanIP(ctx context.Context, ipHash string, reason domain.BanReason, opts BanOptions) (*domain.Ban, error) {
	existing, err := t.CheckBan(ctx, ipHash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := t.now()
	duration := reason.DefaultDuration()
	if opts.Duration != nil {
		duration = *opts.Duration
	}

	ban := &domain.Ban{
		ID:          uuid.New(),
		IPHash:      ipHash,
		Reason:      reason,
		Description: opts.Description,
		CreatedBy:   opts.CreatedBy,
		IsActive:    true,
		CreatedAt:   now,
	}
	if duration == 0 {
		ban.BanType = domain.BanTypePermanent
	} else {
		ban.BanType = domain.BanTypeTemporary
		expiresAt := now.Add(duration)
		ban.ExpiresAt = &expiresAt
	}

	if err := t.bans.Create(ctx, ban); err != nil {
		return nil, err
	}
	prometheus.ActiveBans.WithLabelValues(string(ban.BanType)).Inc()
	t.logger.WithFields(logrus.Fields{
		"ip_hash":  ipHash,
		"ban_type": ban.BanType,
		"reason":   reason,
	}).Warn("identity banned")
	return ban, nil
}

// CheckBan answers whether the identity is currently banned, deactivating an
// expired ban as a side effect so reads are self-healing.
func (t *tracker) CheckBan(ctx context.Context, ipHash string) (*domain.Ban, error) {
	ban, err := t.bans.FindActiveByHash(ctx, ipHash)
	if err != nil {
		return nil, err
	}
	if ban == nil {
		return nil, nil
	}
	if ban.IsExpired(t.now()) {
		if err := t.bans.Deactivate(ctx, ban.ID.String()); err != nil {
			t.logger.WithError(err).WithField("ban_id", ban.ID).Warn("failed to deactivate expired ban")
		} else {
			prometheus.ActiveBans.WithLabelValues(string(ban.BanType)).Dec()
		}
		return nil, nil
	}
	return ban, nil
}

// UnbanIP deactivates the identity's active ban, if any. Unbanning an
// unbanned identity is a no-op.
func (t *tracker) UnbanIP(ctx context.Context, ipHash string) error {
	ban, err := t.bans.FindActiveByHash(ctx, ipHash)
	if err != nil {
		return err
	}
	if ban == nil {
		return nil
	}
	if err := t.bans.Deactivate(ctx, ban.ID.String()); err != nil {
		return err
	}
	prometheus.ActiveBans.WithLabelValues(string(ban.BanType)).Dec()
	t.logger.WithFields(logrus.Fields{
		"ip_hash": ipHash,
		"ban_id":  ban.ID,
	}).Info("identity unbanned")
	return nil
}

// RecordEvent appends to the durable log and the in-memory ring buffer, then
// runs the rolling-window auto-ban checks for the event type. Window counts
// come from the event log itself, so no separate counter table exists.
func (t *tracker) RecordEvent(ctx context.Context, event Event) error {
	entry := &domain.LogEntry{
		ID:        uuid.New(),
		IPHash:    event.IPHash,
		EventType: event.Type,
		Severity:  event.Severity,
		Endpoint:  event.Endpoint,
		Details:   event.Details,
		CreatedAt: t.now(),
	}
	if err := t.logs.Append(ctx, entry); err != nil {
		return err
	}
	prometheus.AbuseEvents.WithLabelValues(string(event.Type)).Inc()
	t.remember(*entry)

	t.escalateWindows(ctx, event)
	return nil
}

func (t *tracker) escalateWindows(ctx context.Context, event Event) {
	now := t.now()
	switch event.Type {
	case domain.EventContentViolation:
		count, err := t.logs.CountEventsSince(ctx, event.IPHash, domain.EventContentViolation, now.Add(-contentViolationWindow))
		if err != nil {
			t.logger.WithError(err).Warn("content-violation window count failed")
			return
		}
		if count >= contentViolationThreshold {
			if err := t.FlagIP(ctx, event.IPHash, "repeated_content_violations"); err != nil {
				t.logger.WithError(err).Warn("auto-flag for repeated violations failed")
			}
		}
	case domain.EventPromptInjection:
		count, err := t.logs.CountEventsSince(ctx, event.IPHash, domain.EventPromptInjection, now.Add(-injectionWindow))
		if err != nil {
			t.logger.WithError(err).Warn("prompt-injection window count failed")
			return
		}
		if count >= injectionThreshold {
			day := 24 * time.Hour
			if _, err := t.BanIP(ctx, event.IPHash, domain.BanReasonPromptInjection, BanOptions{
				Duration:    &day,
				Description: "repeated prompt injection attempts",
				CreatedBy:   "system",
			}); err != nil {
				t.logger.WithError(err).Warn("auto-ban for prompt injection failed")
			}
		}
	case domain.EventRateLimitHit:
		count, err := t.logs.CountEventsSince(ctx, event.IPHash, domain.EventRateLimitHit, now.Add(-rateLimitWindow))
		if err != nil {
			t.logger.WithError(err).Warn("rate-limit window count failed")
			return
		}
		if count >= rateLimitThreshold {
			hour := time.Hour
			if _, err := t.BanIP(ctx, event.IPHash, domain.BanReasonRateLimitAbuse, BanOptions{
				Duration:    &hour,
				Description: "repeated rate limit hits",
				CreatedBy:   "system",
			}); err != nil {
				t.logger.WithError(err).Warn("auto-ban for rate limit abuse failed")
			}
		}
	}
}

func (t *tracker) remember(entry domain.LogEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recent = append(t.recent, entry)
	if len(t.recent) > common.RecentAbuseEventsCap {
		t.recent = t.recent[len(t.recent)-common.RecentAbuseEventsCap:]
	}
}

// RecentEvents returns the newest buffered events first. An empty ipHash
// returns events for all identities.
func (t *tracker) RecentEvents(ipHash string) []domain.LogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.LogEntry, 0, len(t.recent))
	for i := len(t.recent) - 1; i >= 0; i-- {
		if ipHash == "" || t.recent[i].IPHash == ipHash {
			out = append(out, t.recent[i])
		}
	}
	return out
}
