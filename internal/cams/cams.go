// Package cams holds the static observatory lookup tables that sit outside
// the decode path: camera geometry keyed by ADC channel count, and the
// run-number to observing-season mapping.
package cams

import (
	"fmt"
	"strings"
)

// Camera describes one camera generation of the 10m telescope.
type Camera struct {
	NADC       int     // ADC channel count the data files carry
	NPixels    int     // physical pixels in the camera
	Name       string  // conventional name, e.g. "GRANITE-331"
	SpacingDeg float64 // angular pixel spacing in degrees
}

// Store is an immutable camera table, fully populated at construction.
type Store struct {
	byNADC map[int]Camera
}

// JSONFile is the on-disk table layout.
type JSONFile struct {
	Cameras []JSONCamera `json:"cameras"`
}

type JSONCamera struct {
	NADC       int     `json:"nadc"`
	NPixels    int     `json:"npixels"`
	Name       string  `json:"name"`
	SpacingDeg float64 `json:"spacing_deg"`
}

// FromJSON validates the parsed table and builds a Store.
func FromJSON(file JSONFile) (*Store, error) {
	store := &Store{byNADC: make(map[int]Camera)}
	for i, entry := range file.Cameras {
		if entry.NADC <= 0 || entry.NADC%12 != 0 {
			return nil, fmt.Errorf("cameras[%d]: nadc must be a positive multiple of 12", i)
		}
		if entry.NPixels <= 0 || entry.NPixels > entry.NADC {
			return nil, fmt.Errorf("cameras[%d]: npixels out of range", i)
		}
		if _, exists := store.byNADC[entry.NADC]; exists {
			return nil, fmt.Errorf("cameras[%d]: duplicate nadc %d", i, entry.NADC)
		}
		store.byNADC[entry.NADC] = Camera{
			NADC:       entry.NADC,
			NPixels:    entry.NPixels,
			Name:       strings.TrimSpace(entry.Name),
			SpacingDeg: entry.SpacingDeg,
		}
	}
	if len(store.byNADC) == 0 {
		return nil, fmt.Errorf("camera table is empty")
	}
	return store, nil
}

// ByChannelCount finds the camera whose recorded channel count matches n,
// rounded up to the next multiple of 12: the DAQ padded partial ADC crates,
// so e.g. 331 recorded channels map to the 336-channel configuration.
func (s *Store) ByChannelCount(n int) (Camera, bool) {
	if n <= 0 {
		return Camera{}, false
	}
	cam, ok := s.byNADC[(n+11)/12*12]
	return cam, ok
}

// season maps the first run number of each observing season to its calendar
// year. Run numbers only ever increased.
type season struct {
	firstRun uint32
	year     int
}

var seasons = []season{
	{0, 1988},
	{800, 1990},
	{2000, 1992},
	{3800, 1994},
	{6000, 1996},
	{9000, 1998},
	{12000, 2000},
	{16000, 2002},
	{20000, 2004},
	{24000, 2006},
	{28000, 2008},
	{31000, 2010},
}

// YearForRun reports the calendar year a run number belongs to.
func YearForRun(run uint32) int {
	year := seasons[0].year
	for _, s := range seasons {
		if run >= s.firstRun {
			year = s.year
		}
	}
	return year
}
