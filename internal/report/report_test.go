package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleSummary() Summary {
	s := Summary{
		File:       "gt001234.fz.bz2",
		Sha256:     "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		SizeBytes:  1 << 20,
		RunNumber:  1234,
		SeasonYear: 1992,
		Frames:     10,
		Resyncs:    1,
		StartedAt:  time.Date(2026, 8, 25, 3, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 25, 3, 0, 2, 0, time.UTC),
	}
	s.AddRecord("run")
	s.AddRecord("event")
	s.AddRecord("event")
	return s
}

func TestSummaryCounters(t *testing.T) {
	s := sampleSummary()
	require.EqualValues(t, 3, s.Records)
	require.EqualValues(t, 2, s.RecordCounts["event"])
	require.Equal(t, 2*time.Second, s.Duration())
}

func TestSaveSummaryJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	require.NoError(t, SaveSummaryJSON(sampleSummary(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Summary
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, sampleSummary(), got)
}

func TestSaveSummaryPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.pdf")
	require.NoError(t, SaveSummaryPDF(sampleSummary(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestHashToQR(t *testing.T) {
	png, err := HashToQR("9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08", 128)
	require.NoError(t, err)
	require.NotEmpty(t, png)

	_, err = HashToQR("  ", 128)
	require.Error(t, err)
}

func TestNormalizeDigest(t *testing.T) {
	digest, ok := normalizeDigest(" 9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08 ")
	require.True(t, ok)
	require.Equal(t, "9F86D081884C7D659A2FEAA0C55AD015A3BF4F1B2B0B822CD15D6C15B0F00A08", digest)

	for _, bad := range []string{"", "zz", "abcd12",
		"9z86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"} {
		_, ok := normalizeDigest(bad)
		require.False(t, ok, "digest %q", bad)
	}
}
