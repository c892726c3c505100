package cams

import (
	"path/filepath"
	"testing"
)

func TestDefaultTable(t *testing.T) {
	store, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	cam, ok := store.ByChannelCount(336)
	if !ok {
		t.Fatalf("336-channel camera missing")
	}
	if cam.Name != "GRANITE-331" || cam.NPixels != 331 {
		t.Fatalf("unexpected camera: %+v", cam)
	}
}

func TestByChannelCountRoundsUp(t *testing.T) {
	store, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	cases := []struct {
		n     int
		name  string
		found bool
	}{
		{331, "GRANITE-331", true},
		{120, "GRANITE-109", true},
		{490, "GRANITE-490", true},
		{0, "", false},
		{1000, "", false},
	}
	for _, tc := range cases {
		cam, ok := store.ByChannelCount(tc.n)
		if ok != tc.found {
			t.Fatalf("ByChannelCount(%d) found=%v, want %v", tc.n, ok, tc.found)
		}
		if ok && cam.Name != tc.name {
			t.Fatalf("ByChannelCount(%d) = %s, want %s", tc.n, cam.Name, tc.name)
		}
	}
}

func TestFromJSONValidation(t *testing.T) {
	bad := []JSONFile{
		{},
		{Cameras: []JSONCamera{{NADC: 100, NPixels: 90}}},                         // not a multiple of 12
		{Cameras: []JSONCamera{{NADC: 120, NPixels: 0}}},                          // no pixels
		{Cameras: []JSONCamera{{NADC: 120, NPixels: 200}}},                        // more pixels than channels
		{Cameras: []JSONCamera{{NADC: 120, NPixels: 1}, {NADC: 120, NPixels: 2}}}, // duplicate
	}
	for i, file := range bad {
		if _, err := FromJSON(file); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestEnsureLoadedFallsBackToDefault(t *testing.T) {
	store, err := EnsureLoaded("")
	if err != nil {
		t.Fatalf("EnsureLoaded: %v", err)
	}
	if _, ok := store.ByChannelCount(156); !ok {
		t.Fatalf("default table missing 156-channel camera")
	}
}

func TestEnsureLoadedRejectsDirectory(t *testing.T) {
	if _, err := EnsureLoaded(filepath.Dir(t.TempDir())); err == nil {
		t.Fatalf("expected error for directory path")
	}
}

func TestYearForRun(t *testing.T) {
	cases := []struct {
		run  uint32
		want int
	}{
		{0, 1988},
		{799, 1988},
		{800, 1990},
		{12345, 2000},
		{99999, 2010},
	}
	for _, tc := range cases {
		if got := YearForRun(tc.run); got != tc.want {
			t.Fatalf("YearForRun(%d) = %d, want %d", tc.run, got, tc.want)
		}
	}
}
