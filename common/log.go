package common

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// ConfigureLogging installs the process-wide logger every package derives
// its prefixed logger from.
func ConfigureLogging(w io.Writer, level string) error {
	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return err
		}
		lvl = parsed
	}
	if w == nil {
		w = os.Stderr
	}
	log.SetDefault(log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: lvl == log.DebugLevel,
	}))
	return nil
}

// Logger returns a logger tagged with prefix.
func Logger(prefix string) *log.Logger {
	return log.Default().WithPrefix(prefix)
}
