package cams

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

//go:embed whipple_cams.json
var defaultTable []byte

var (
	defaultOnce  sync.Once
	defaultStore *Store
	defaultErr   error
)

// Default returns the built-in camera table.
func Default() (*Store, error) {
	defaultOnce.Do(func() {
		var file JSONFile
		if err := json.Unmarshal(defaultTable, &file); err != nil {
			defaultErr = err
			return
		}
		defaultStore, defaultErr = FromJSON(file)
	})
	return defaultStore, defaultErr
}

// Load reads a camera table from path.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file JSONFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return FromJSON(file)
}

// EnsureLoaded loads the table at path, or the built-in table when path is
// empty.
func EnsureLoaded(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("camera table path %s is a directory", path)
	}
	return Load(path)
}
