package abuse_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	appabuse "github.com/dinesh-git17/debate-lab-sub000/pkg/app/abuse"
	domain "github.com/dinesh-git17/debate-lab-sub000/pkg/domain/abuse"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/domain/abuse/mocks"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/prometheus"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var frozenNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

const testHash = "a1b2c3d4e5f6a7b8a1b2c3d4e5f6a7b8a1b2c3d4e5f6a7b8a1b2c3d4e5f6a7b8"

type trackerFixture struct {
	tracking *mocks.TrackingRepository
	bans     *mocks.BanRepository
	logs     *mocks.LogRepository
	tracker  appabuse.Tracker
}

func newTrackerFixture() *trackerFixture {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &trackerFixture{
		tracking: new(mocks.TrackingRepository),
		bans:     new(mocks.BanRepository),
		logs:     new(mocks.LogRepository),
	}
	f.tracker = appabuse.NewTracker(f.tracking, f.bans, f.logs, logger, appabuse.Opts{
		TimeProvider: func() time.Time { return frozenNow },
	})
	return f
}

func activeBan(banType domain.BanType, expiresAt *time.Time) *domain.Ban {
	return &domain.Ban{
		ID:        uuid.New(),
		IPHash:    testHash,
		BanType:   banType,
		Reason:    domain.BanReasonContentViolation,
		ExpiresAt: expiresAt,
		IsActive:  true,
		CreatedAt: frozenNow.Add(-time.Hour),
	}
}

func TestTrackVisit_FirstSightCreatesRecord(t *testing.T) {
	f := newTrackerFixture()

	f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(nil, nil)
	f.tracking.On("GetByHash", mock.Anything, testHash).Return(nil, nil)
	f.tracking.On("Upsert", mock.Anything, mock.MatchedBy(func(r *domain.TrackingRecord) bool {
		return r.IPHash == testHash &&
			r.VisitCount == 1 &&
			r.FirstSeen.Equal(frozenNow) &&
			r.LastSeen.Equal(frozenNow) &&
			r.Metadata["user_agent"] == "test-agent"
	})).Return(nil)

	ban, err := f.tracker.TrackVisit(context.Background(), testHash, "/api/v1/validate/topic", map[string]any{
		"user_agent": "test-agent",
	})

	require.NoError(t, err)
	assert.Nil(t, ban)
	f.tracking.AssertExpectations(t)
}

func TestTrackVisit_ExistingRecordIncrements(t *testing.T) {
	f := newTrackerFixture()

	f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(nil, nil)
	f.tracking.On("GetByHash", mock.Anything, testHash).Return(&domain.TrackingRecord{
		IPHash:     testHash,
		FirstSeen:  frozenNow.Add(-48 * time.Hour),
		VisitCount: 41,
	}, nil)
	f.tracking.On("Upsert", mock.Anything, mock.MatchedBy(func(r *domain.TrackingRecord) bool {
		return r.VisitCount == 42 && r.FirstSeen.Equal(frozenNow.Add(-48*time.Hour))
	})).Return(nil)

	_, err := f.tracker.TrackVisit(context.Background(), testHash, "/api/v1/validate/topic", nil)

	require.NoError(t, err)
	f.tracking.AssertExpectations(t)
}

func TestTrackVisit_BannedIdentityLogsBypassAttempt(t *testing.T) {
	f := newTrackerFixture()

	expiresAt := frozenNow.Add(time.Hour)
	ban := activeBan(domain.BanTypeTemporary, &expiresAt)
	f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(ban, nil)
	f.logs.On("Append", mock.Anything, mock.MatchedBy(func(e *domain.LogEntry) bool {
		return e.EventType == domain.EventBanBypassAttempt &&
			e.Severity == domain.EventSeverityHigh &&
			e.Details["ban_id"] == ban.ID.String()
	})).Return(nil)

	got, err := f.tracker.TrackVisit(context.Background(), testHash, "/api/v1/validate/topic", nil)

	require.NoError(t, err)
	assert.Equal(t, ban, got)
	// The tracking record is not touched for banned identities.
	f.tracking.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestTrackVisit_StoreFailuresFailOpen(t *testing.T) {
	t.Run("ban lookup failure", func(t *testing.T) {
		f := newTrackerFixture()
		f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(nil, errors.New("db down"))

		ban, err := f.tracker.TrackVisit(context.Background(), testHash, "/x", nil)
		require.NoError(t, err)
		assert.Nil(t, ban)
	})

	t.Run("tracking lookup failure", func(t *testing.T) {
		f := newTrackerFixture()
		f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(nil, nil)
		f.tracking.On("GetByHash", mock.Anything, testHash).Return(nil, errors.New("db down"))

		ban, err := f.tracker.TrackVisit(context.Background(), testHash, "/x", nil)
		require.NoError(t, err)
		assert.Nil(t, ban)
	})

	t.Run("upsert failure", func(t *testing.T) {
		f := newTrackerFixture()
		f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(nil, nil)
		f.tracking.On("GetByHash", mock.Anything, testHash).Return(nil, nil)
		f.tracking.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("db down"))

		ban, err := f.tracker.TrackVisit(context.Background(), testHash, "/x", nil)
		require.NoError(t, err)
		assert.Nil(t, ban)
	})
}

func TestFlagIP_AddsFlagAndDeduplicatesReasons(t *testing.T) {
	f := newTrackerFixture()

	f.tracking.On("GetByHash", mock.Anything, testHash).Return(&domain.TrackingRecord{
		IPHash:      testHash,
		FlagReasons: []string{"spam"},
		FlagCount:   1,
	}, nil)
	f.tracking.On("Upsert", mock.Anything, mock.MatchedBy(func(r *domain.TrackingRecord) bool {
		return r.FlagCount == 2 && r.IsFlagged && len(r.FlagReasons) == 1
	})).Return(nil)
	f.logs.On("Append", mock.Anything, mock.MatchedBy(func(e *domain.LogEntry) bool {
		return e.EventType == domain.EventManualFlag
	})).Return(nil)

	err := f.tracker.FlagIP(context.Background(), testHash, "spam")

	require.NoError(t, err)
	// Two flags ban nothing.
	f.bans.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.tracking.AssertExpectations(t)
}

func TestFlagIP_ThirdFlagEscalatesToTemporaryBan(t *testing.T) {
	f := newTrackerFixture()

	f.tracking.On("GetByHash", mock.Anything, testHash).Return(&domain.TrackingRecord{
		IPHash:    testHash,
		FlagCount: 2,
	}, nil)
	f.tracking.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(nil, nil)

	var created *domain.Ban
	f.bans.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.Ban)
	}).Return(nil)

	err := f.tracker.FlagIP(context.Background(), testHash, "abuse")

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, domain.BanTypeTemporary, created.BanType)
	assert.Equal(t, "system", created.CreatedBy)
	require.NotNil(t, created.ExpiresAt)
	assert.Equal(t, frozenNow.Add(24*time.Hour), *created.ExpiresAt)
}

func TestFlagIP_TenthFlagEscalatesToPermanentBan(t *testing.T) {
	f := newTrackerFixture()

	f.tracking.On("GetByHash", mock.Anything, testHash).Return(&domain.TrackingRecord{
		IPHash:    testHash,
		FlagCount: 9,
	}, nil)
	f.tracking.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(nil, nil)

	var created *domain.Ban
	f.bans.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.Ban)
	}).Return(nil)

	err := f.tracker.FlagIP(context.Background(), testHash, "abuse")

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, domain.BanTypePermanent, created.BanType)
	assert.Equal(t, domain.BanReasonManual, created.Reason)
	assert.Nil(t, created.ExpiresAt)
}

func TestFlagIP_PermanentThresholdUpgradesActiveTemporaryBan(t *testing.T) {
	f := newTrackerFixture()

	f.tracking.On("GetByHash", mock.Anything, testHash).Return(&domain.TrackingRecord{
		IPHash:    testHash,
		FlagCount: 9,
	}, nil)
	f.tracking.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	// The flag-3 temporary ban is still in force when the tenth flag lands.
	expiresAt := frozenNow.Add(12 * time.Hour)
	tempBan := activeBan(domain.BanTypeTemporary, &expiresAt)
	f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(tempBan, nil).Once()
	f.bans.On("Deactivate", mock.Anything, tempBan.ID.String()).Return(nil)
	f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(nil, nil)

	var created *domain.Ban
	f.bans.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.Ban)
	}).Return(nil)

	err := f.tracker.FlagIP(context.Background(), testHash, "abuse")

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, domain.BanTypePermanent, created.BanType)
	assert.Equal(t, domain.BanReasonManual, created.Reason)
	assert.Nil(t, created.ExpiresAt)
	f.bans.AssertExpectations(t)
}

func TestFlagIP_PermanentThresholdWithPermanentBanIsNoOp(t *testing.T) {
	f := newTrackerFixture()

	f.tracking.On("GetByHash", mock.Anything, testHash).Return(&domain.TrackingRecord{
		IPHash:    testHash,
		FlagCount: 11,
	}, nil)
	f.tracking.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(activeBan(domain.BanTypePermanent, nil), nil)

	err := f.tracker.FlagIP(context.Background(), testHash, "abuse")

	require.NoError(t, err)
	f.bans.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything)
	f.bans.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBanIP_IsIdempotent(t *testing.T) {
	f := newTrackerFixture()

	expiresAt := frozenNow.Add(time.Hour)
	existing := activeBan(domain.BanTypeTemporary, &expiresAt)
	f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(existing, nil)

	got, err := f.tracker.BanIP(context.Background(), testHash, domain.BanReasonSpamBot, appabuse.BanOptions{})

	require.NoError(t, err)
	assert.Equal(t, existing, got)
	f.bans.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBanIP_DurationHandling(t *testing.T) {
	zero := time.Duration(0)
	twoHours := 2 * time.Hour

	tests := []struct {
		name        string
		reason      domain.BanReason
		opts        appabuse.BanOptions
		wantType    domain.BanType
		wantExpires *time.Time
	}{
		{
			name:        "nil duration uses reason default",
			reason:      domain.BanReasonRateLimitAbuse,
			opts:        appabuse.BanOptions{},
			wantType:    domain.BanTypeTemporary,
			wantExpires: timePtr(frozenNow.Add(time.Hour)),
		},
		{
			name:     "zero duration is permanent",
			reason:   domain.BanReasonContentViolation,
			opts:     appabuse.BanOptions{Duration: &zero},
			wantType: domain.BanTypePermanent,
		},
		{
			name:        "explicit duration overrides default",
			reason:      domain.BanReasonContentViolation,
			opts:        appabuse.BanOptions{Duration: &twoHours},
			wantType:    domain.BanTypeTemporary,
			wantExpires: timePtr(frozenNow.Add(2 * time.Hour)),
		},
		{
			name:     "illegal content defaults to permanent",
			reason:   domain.BanReasonIllegalContent,
			opts:     appabuse.BanOptions{},
			wantType: domain.BanTypePermanent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTrackerFixture()
			f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(nil, nil)

			var created *domain.Ban
			f.bans.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
				created = args.Get(1).(*domain.Ban)
			}).Return(nil)

			_, err := f.tracker.BanIP(context.Background(), testHash, tt.reason, tt.opts)

			require.NoError(t, err)
			require.NotNil(t, created)
			assert.Equal(t, tt.wantType, created.BanType)
			assert.True(t, created.IsActive)
			if tt.wantExpires == nil {
				assert.Nil(t, created.ExpiresAt)
			} else {
				require.NotNil(t, created.ExpiresAt)
				assert.Equal(t, *tt.wantExpires, *created.ExpiresAt)
			}
		})
	}
}

func TestBanLifecycle_MovesActiveBanGauge(t *testing.T) {
	f := newTrackerFixture()

	f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(nil, nil).Once()
	var created *domain.Ban
	f.bans.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.Ban)
	}).Return(nil)

	gauge := prometheus.ActiveBans.WithLabelValues(string(domain.BanTypeTemporary))
	before := testutil.ToFloat64(gauge)

	_, err := f.tracker.BanIP(context.Background(), testHash, domain.BanReasonSpamBot, appabuse.BanOptions{})
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(gauge))

	f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(created, nil)
	f.bans.On("Deactivate", mock.Anything, created.ID.String()).Return(nil)

	require.NoError(t, f.tracker.UnbanIP(context.Background(), testHash))
	assert.Equal(t, before, testutil.ToFloat64(gauge))
}

func TestCheckBan_ExpiredBanIsLazilyDeactivated(t *testing.T) {
	f := newTrackerFixture()

	expiresAt := frozenNow.Add(-time.Minute)
	expired := activeBan(domain.BanTypeTemporary, &expiresAt)
	f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(expired, nil)
	f.bans.On("Deactivate", mock.Anything, expired.ID.String()).Return(nil)

	ban, err := f.tracker.CheckBan(context.Background(), testHash)

	require.NoError(t, err)
	assert.Nil(t, ban)
	f.bans.AssertExpectations(t)
}

func TestCheckBan_PermanentBanNeverExpires(t *testing.T) {
	f := newTrackerFixture()

	permanent := activeBan(domain.BanTypePermanent, nil)
	f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(permanent, nil)

	ban, err := f.tracker.CheckBan(context.Background(), testHash)

	require.NoError(t, err)
	assert.Equal(t, permanent, ban)
	f.bans.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything)
}

func TestUnbanIP_NoActiveBanIsNoOp(t *testing.T) {
	f := newTrackerFixture()

	f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(nil, nil)

	err := f.tracker.UnbanIP(context.Background(), testHash)

	require.NoError(t, err)
	f.bans.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything)
}

func TestUnbanIP_DeactivatesActiveBan(t *testing.T) {
	f := newTrackerFixture()

	permanent := activeBan(domain.BanTypePermanent, nil)
	f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(permanent, nil)
	f.bans.On("Deactivate", mock.Anything, permanent.ID.String()).Return(nil)

	err := f.tracker.UnbanIP(context.Background(), testHash)

	require.NoError(t, err)
	f.bans.AssertExpectations(t)
}

func TestRecordEvent_RepeatedContentViolationsAutoFlag(t *testing.T) {
	f := newTrackerFixture()

	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.logs.On("CountEventsSince", mock.Anything, testHash, domain.EventContentViolation,
		frozenNow.Add(-24*time.Hour)).Return(int64(3), nil)
	f.logs.On("CountEventsSince", mock.Anything, testHash, mock.Anything, mock.Anything).
		Return(int64(0), nil)

	// The auto-flag path goes through FlagIP.
	f.tracking.On("GetByHash", mock.Anything, testHash).Return(nil, nil)
	f.tracking.On("Upsert", mock.Anything, mock.MatchedBy(func(r *domain.TrackingRecord) bool {
		return r.IsFlagged && r.HasReason("repeated_content_violations")
	})).Return(nil)

	err := f.tracker.RecordEvent(context.Background(), appabuse.Event{
		IPHash:   testHash,
		Type:     domain.EventContentViolation,
		Severity: domain.EventSeverityMedium,
		Endpoint: "/api/v1/validate/topic",
	})

	require.NoError(t, err)
	f.tracking.AssertExpectations(t)
}

func TestRecordEvent_RepeatedInjectionsAutoBan(t *testing.T) {
	f := newTrackerFixture()

	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.logs.On("CountEventsSince", mock.Anything, testHash, domain.EventPromptInjection,
		frozenNow.Add(-24*time.Hour)).Return(int64(2), nil)
	f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(nil, nil)

	var created *domain.Ban
	f.bans.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.Ban)
	}).Return(nil)

	err := f.tracker.RecordEvent(context.Background(), appabuse.Event{
		IPHash:   testHash,
		Type:     domain.EventPromptInjection,
		Severity: domain.EventSeverityHigh,
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, domain.BanReasonPromptInjection, created.Reason)
	require.NotNil(t, created.ExpiresAt)
	assert.Equal(t, frozenNow.Add(24*time.Hour), *created.ExpiresAt)
}

func TestRecordEvent_RateLimitHitsAutoBan(t *testing.T) {
	f := newTrackerFixture()

	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.logs.On("CountEventsSince", mock.Anything, testHash, domain.EventRateLimitHit,
		frozenNow.Add(-time.Hour)).Return(int64(10), nil)
	f.bans.On("FindActiveByHash", mock.Anything, testHash).Return(nil, nil)

	var created *domain.Ban
	f.bans.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.Ban)
	}).Return(nil)

	err := f.tracker.RecordEvent(context.Background(), appabuse.Event{
		IPHash:   testHash,
		Type:     domain.EventRateLimitHit,
		Severity: domain.EventSeverityLow,
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, domain.BanReasonRateLimitAbuse, created.Reason)
	require.NotNil(t, created.ExpiresAt)
	assert.Equal(t, frozenNow.Add(time.Hour), *created.ExpiresAt)
}

func TestRecordEvent_BelowWindowThresholdDoesNothing(t *testing.T) {
	f := newTrackerFixture()

	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.logs.On("CountEventsSince", mock.Anything, testHash, mock.Anything, mock.Anything).
		Return(int64(1), nil)

	err := f.tracker.RecordEvent(context.Background(), appabuse.Event{
		IPHash: testHash,
		Type:   domain.EventPromptInjection,
	})

	require.NoError(t, err)
	f.bans.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRecordEvent_AppendFailureBubblesUp(t *testing.T) {
	f := newTrackerFixture()

	f.logs.On("Append", mock.Anything, mock.Anything).Return(errors.New("db down"))

	err := f.tracker.RecordEvent(context.Background(), appabuse.Event{
		IPHash: testHash,
		Type:   domain.EventSuspiciousPattern,
	})

	assert.Error(t, err)
}

func TestRecentEvents_NewestFirstWithFilter(t *testing.T) {
	f := newTrackerFixture()

	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	otherHash := "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
	for _, ev := range []appabuse.Event{
		{IPHash: testHash, Type: domain.EventSuspiciousPattern},
		{IPHash: otherHash, Type: domain.EventSuspiciousPattern},
		{IPHash: testHash, Type: domain.EventManualFlag},
	} {
		require.NoError(t, f.tracker.RecordEvent(context.Background(), ev))
	}

	all := f.tracker.RecentEvents("")
	require.Len(t, all, 3)
	assert.Equal(t, domain.EventManualFlag, all[0].EventType)

	filtered := f.tracker.RecentEvents(testHash)
	require.Len(t, filtered, 2)
	assert.Equal(t, domain.EventManualFlag, filtered[0].EventType)
	assert.Equal(t, domain.EventSuspiciousPattern, filtered[1].EventType)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
