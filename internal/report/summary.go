// Package report renders decode-session summaries as JSON and PDF artifacts.
package report

import (
	"encoding/json"
	"os"
	"time"
)

// Summary captures the outcome of decoding one archive file.
type Summary struct {
	File       string `json:"file"`
	Sha256     string `json:"sha256,omitempty"`
	SizeBytes  int64  `json:"size_bytes"`
	RunNumber  uint32 `json:"run_number,omitempty"`
	SeasonYear int    `json:"season_year,omitempty"`

	Frames   int64 `json:"frames"`
	Records  int64 `json:"records"`
	Resyncs  int64 `json:"resyncs"`
	Discards int64 `json:"discards"`

	RecordCounts map[string]int64 `json:"record_counts"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Error string `json:"error,omitempty"`
}

// AddRecord bumps the per-type tally.
func (s *Summary) AddRecord(recordType string) {
	if s.RecordCounts == nil {
		s.RecordCounts = make(map[string]int64)
	}
	s.RecordCounts[recordType]++
	s.Records++
}

// Duration reports the wall-clock decode time.
func (s *Summary) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// SaveSummaryJSON writes the summary as indented JSON.
func SaveSummaryJSON(s Summary, out string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(out, data, 0o644)
}
