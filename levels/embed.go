package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

//go:embed *.json
var LevelsFS embed.FS

// List returns the names of the embedded levels in lexical order.
func List() ([]string, error) {
	names, err := fs.Glob(LevelsFS, "*.json")
	if err != nil {
		return nil, fmt.Errorf("levels: list: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// LoadLevelFromFS reads, decodes and validates an embedded level.
func LoadLevelFromFS(name string) (*Level, error) {
	data, err := fs.ReadFile(LevelsFS, cleanLevelName(name))
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", name, err)
	}
	return Parse(data)
}

// LoadLevelFile reads a level from disk.
func LoadLevelFile(p string) (*Level, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", p, err)
	}
	return Parse(data)
}

// Load prefers a file on disk and falls back to the embedded levels, so
// both "levels/tutorial.json" and "tutorial" resolve.
func Load(name string) (*Level, error) {
	if _, err := os.Stat(name); err == nil {
		return LoadLevelFile(name)
	}
	return LoadLevelFromFS(name)
}

func cleanLevelName(name string) string {
	s := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if !strings.HasSuffix(s, ".json") {
		s += ".json"
	}
	return s
}
