package domain

import (
	"strings"
	"time"
)

// WorkItem is one unit of batch work read from the input table.
type WorkItem struct {
	Name  string `json:"name"`
	City  string `json:"city"`
	Email string `json:"email"`
}

// FetchedDataset points at a data file produced by the fetch step.
type FetchedDataset struct {
	Path      string    `json:"path"`
	FetchedAt time.Time `json:"fetched_at"`
	Cached    bool      `json:"cached"` // true when served from the fetch cache
}

// ClientRecord is an ordered field -> value mapping used to fill one report.
type ClientRecord struct {
	keys   []string
	values map[string]string
}

// NewClientRecord creates an empty record.
func NewClientRecord() *ClientRecord {
	return &ClientRecord{values: make(map[string]string)}
}

// Set stores a value. New keys are appended, existing keys keep their position.
func (r *ClientRecord) Set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for key.
func (r *ClientRecord) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the field names in insertion order.
func (r *ClientRecord) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Values returns the field values in key order.
func (r *ClientRecord) Values() []string {
	out := make([]string, len(r.keys))
	for i, k := range r.keys {
		out[i] = r.values[k]
	}
	return out
}

// Len returns the number of fields.
func (r *ClientRecord) Len() int {
	return len(r.keys)
}

// Identity returns the value used to name the record's artifact.
func (r *ClientRecord) Identity() string {
	for _, k := range []string{"name", "Nombre", "Ciudad", "city"} {
		if v, ok := r.values[k]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return "client"
}

// ReportArtifact is a persisted spreadsheet for one work item.
type ReportArtifact struct {
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// Status is the terminal outcome of a work item.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// ResultRecord is the ledger entry for one work item.
type ResultRecord struct {
	Name           string        `json:"name"`
	City           string        `json:"city"`
	Status         Status        `json:"status"`
	Notes          string        `json:"notes"`
	Elapsed        time.Duration `json:"elapsed"`
	ArtifactPath   string        `json:"artifact_path,omitempty"`
	ScreenshotPath string        `json:"screenshot_path,omitempty"`
}

// ElapsedSeconds returns the elapsed time as float seconds.
func (r ResultRecord) ElapsedSeconds() float64 {
	return r.Elapsed.Seconds()
}

// Ledger is the ordered audit trail of a batch run.
type Ledger struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	DryRun     bool           `json:"dry_run"`
	Records    []ResultRecord `json:"records"`
}

// Counts returns the number of ok and failed records.
func (l *Ledger) Counts() (ok, failed int) {
	for _, r := range l.Records {
		if r.Status == StatusOK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}
