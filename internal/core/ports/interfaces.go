package ports

import (
	"context"
	"time"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
)

// Fetcher obtains fresh data for a location key from an external source.
type Fetcher interface {
	// Fetch blocks until the source has produced its data file.
	// Implementations must not retry internally; callers wrap them in a retry policy.
	Fetch(ctx context.Context, locationKey string) (domain.FetchedDataset, error)
}

// Extractor selects the record for a location key from a fetched dataset.
type Extractor interface {
	Extract(dataset domain.FetchedDataset, locationKey string) (*domain.ClientRecord, error)
}

// ReportBuilder persists a single record as a spreadsheet.
type ReportBuilder interface {
	Build(ctx context.Context, record *domain.ClientRecord) (domain.ReportArtifact, error)
}

// Message is an outgoing notification.
type Message struct {
	Subject    string
	HTMLBody   string
	Attachment string // path to a file, optional
}

// Notifier delivers a message with its attachment to the configured recipient.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Capturer takes a best-effort diagnostic snapshot after a failure.
// It returns the path of the capture, or "" when nothing was captured.
type Capturer interface {
	Capture(ctx context.Context, tag string) (string, error)
}

// DatasetCache stores fetched datasets between invocations.
type DatasetCache interface {
	// Load restores a cached dataset for key into path. ok is false on a miss.
	Load(ctx context.Context, key, path string) (ds domain.FetchedDataset, ok bool, err error)
	// Store records the dataset at path for key.
	Store(ctx context.Context, key string, ds domain.FetchedDataset) error
}

// Clock abstracts wall time so report names and durations are testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
