// Copyright (c) 2015-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package build

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
)

// LogType is an indicating the type of logging specified by the build flag.
type LogType byte

const (
	// LogTypeNone indicates no logging.
	LogTypeNone LogType = iota

	// LogTypeStdOut all logging is written directly to stdout.
	LogTypeStdOut

	// LogTypeDefault logs to both stdout and a rotating log file.
	LogTypeDefault
)

// String returns a human readable identifier for the logging type.
func (t LogType) String() string {
	switch t {
	case LogTypeNone:
		return "none"
	case LogTypeStdOut:
		return "stdout"
	case LogTypeDefault:
		return "default"
	default:
		return "unknown"
	}
}

// NewSubLogger constructs a new subsystem log from the current LogWriter
// implementation. This is primarily intended for use with stdlog, as the actual
// writer is shared amongst all instantiations.
func NewSubLogger(subsystem string,
	genSubLogger func(string) btclog.Logger) btclog.Logger {

	switch Deployment {

	// For production builds, generate a new subsystem logger from the
	// primary log backend. If no function is provided, logging will be
	// disabled.
	case Production:
		if genSubLogger != nil {
			return genSubLogger(subsystem)
		}

	// For development builds, we must handle two distinct types of logging:
	// unit tests and running the command line tool.
	case Development:
		switch LoggingType {
		case LogTypeDefault:
			if genSubLogger != nil {
				return genSubLogger(subsystem)
			}

		// Logging to stdout is used in unit tests. It is not important
		// that they share the same backend, since all output is written
		// to std out.
		case LogTypeStdOut:
			backend := btclog.NewBackend(os.Stdout)
			logger := backend.Logger(subsystem)

			level, _ := btclog.LevelFromString(LogLevel)
			logger.SetLevel(level)

			return logger
		}
	}

	// For any other configurations, we'll disable logging.
	return btclog.Disabled
}

// RotatingLogWriter is a shared log backend that writes to stdout and,
// once InitLogRotator has been called, to a rotating log file. Every
// subsystem logger it hands out is tracked so levels can be changed later.
type RotatingLogWriter struct {
	backend *btclog.Backend

	mu      sync.Mutex
	rotator *rotator.Rotator
	loggers map[string]btclog.Logger
	stdout  bool
}

// NewRotatingLogWriter creates a writer that only logs to stdout until a log
// file is configured.
func NewRotatingLogWriter() *RotatingLogWriter {
	w := &RotatingLogWriter{
		loggers: make(map[string]btclog.Logger),
		stdout:  true,
	}
	w.backend = btclog.NewBackend(w)
	return w
}

// Write writes the data in p to stdout and the log rotator.
func (w *RotatingLogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stdout {
		os.Stdout.Write(p)
	}
	if w.rotator != nil {
		w.rotator.Write(p)
	}
	return len(p), nil
}

// DisableStdout stops copying log lines to stdout. Commands whose output is
// consumed by scripts call this so only the log file sees log lines.
func (w *RotatingLogWriter) DisableStdout() {
	w.mu.Lock()
	w.stdout = false
	w.mu.Unlock()
}

// InitLogRotator initializes the logging rotater to write logs to logFile and
// create roll files in the same directory. It must be called before the
// package-global log rotater variables are used.
func (w *RotatingLogWriter) InitLogRotator(logFile string, maxFileSizeKB int64,
	maxFiles int) error {

	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	r, err := rotator.New(logFile, maxFileSizeKB, false, maxFiles)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}

	w.mu.Lock()
	w.rotator = r
	w.mu.Unlock()

	return nil
}

// GenSubLogger creates a new logger for subsystem on the shared backend and
// registers it. It has the signature NewSubLogger expects.
func (w *RotatingLogWriter) GenSubLogger(subsystem string) btclog.Logger {
	w.mu.Lock()
	defer w.mu.Unlock()

	if logger, ok := w.loggers[subsystem]; ok {
		return logger
	}
	logger := w.backend.Logger(subsystem)
	w.loggers[subsystem] = logger
	return logger
}

// SupportedSubsystems returns a sorted slice of the registered subsystems.
func (w *RotatingLogWriter) SupportedSubsystems() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	subsystems := make([]string, 0, len(w.loggers))
	for subsysID := range w.loggers {
		subsystems = append(subsystems, subsysID)
	}
	sort.Strings(subsystems)
	return subsystems
}

// SetLogLevel sets the logging level for the provided subsystem. Invalid
// subsystems are ignored.
func (w *RotatingLogWriter) SetLogLevel(subsystemID string, logLevel string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	logger, ok := w.loggers[subsystemID]
	if !ok {
		return
	}

	// Defaults to info if the log level is invalid.
	level, _ := btclog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// SetLogLevels sets the log level for all registered subsystem loggers.
func (w *RotatingLogWriter) SetLogLevels(logLevel string) {
	for _, subsystemID := range w.SupportedSubsystems() {
		w.SetLogLevel(subsystemID, logLevel)
	}
}

// ParseAndSetDebugLevels attempts to parse the specified debug level and set
// the levels accordingly. An appropriate error is returned if anything is
// invalid. The level is either a single global level or a comma separated
// list of subsystem=level pairs.
func (w *RotatingLogWriter) ParseAndSetDebugLevels(debugLevel string) error {
	// When the specified string doesn't have any delimters, treat it as
	// the log level for all subsystems.
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		if _, ok := btclog.LevelFromString(debugLevel); !ok {
			return fmt.Errorf("the specified debug level [%v] is "+
				"invalid", debugLevel)
		}
		w.SetLogLevels(debugLevel)
		return nil
	}

	known := make(map[string]struct{})
	for _, subsysID := range w.SupportedSubsystems() {
		known[subsysID] = struct{}{}
	}

	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			return fmt.Errorf("the specified debug level contains "+
				"an invalid subsystem/level pair [%v]",
				logLevelPair)
		}

		fields := strings.Split(logLevelPair, "=")
		subsysID, logLevel := fields[0], fields[1]

		if _, ok := known[subsysID]; !ok {
			return fmt.Errorf("the specified subsystem [%v] is "+
				"invalid -- supported subsystems %v", subsysID,
				w.SupportedSubsystems())
		}
		if _, ok := btclog.LevelFromString(logLevel); !ok {
			return fmt.Errorf("the specified debug level [%v] is "+
				"invalid", logLevel)
		}

		w.SetLogLevel(subsysID, logLevel)
	}

	return nil
}

// Close closes the log rotator if one was initialized.
func (w *RotatingLogWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.rotator == nil {
		return nil
	}
	err := w.rotator.Close()
	w.rotator = nil
	return err
}
