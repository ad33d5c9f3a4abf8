package abuse

import (
	"context"
	"time"
)

//go:generate mockery --name=TrackingRepository --dir=. --output=./mocks --filename=tracking_repository_mock.go --case=underscore --with-expecter

// TrackingRepository persists per-identity tracking records.
type TrackingRepository interface {
	GetByHash(ctx context.Context, ipHash string) (*TrackingRecord, error)
	Upsert(ctx context.Context, record *TrackingRecord) error
}

//go:generate mockery --name=BanRepository --dir=. --output=./mocks --filename=ban_repository_mock.go --case=underscore --with-expecter

// BanRepository persists ban rows. FindActiveByHash must only return bans
// with is_active=true; Deactivate flips the flag without deleting the row.
type BanRepository interface {
	Create(ctx context.Context, ban *Ban) error
	FindActiveByHash(ctx context.Context, ipHash string) (*Ban, error)
	Deactivate(ctx context.Context, id string) error
}

//go:generate mockery --name=LogRepository --dir=. --output=./mocks --filename=log_repository_mock.go --case=underscore --with-expecter

// LogRepository is the append-only event store. CountEventsSince backs the
// rolling-window escalation checks; a counter-based implementation may
// replace the table scan without changing callers.
type LogRepository interface {
	Append(ctx context.Context, entry *LogEntry) error
	CountEventsSince(ctx context.Context, ipHash string, eventType EventType, since time.Time) (int64, error)
	RecentByHash(ctx context.Context, ipHash string, limit int) ([]LogEntry, error)
}
