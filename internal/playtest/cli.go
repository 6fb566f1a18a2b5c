package playtest

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/ghostrace/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0o600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		logFile = "race_play_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	log.SetOutput(io.MultiWriter(os.Stdout, file))
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information.
func ShowHelp() {
	os.Stdout.WriteString(`Ghost Race Play Tool
====================

Plays one race against a running service and verifies the claimed rank.

Usage:
  go run ./cmd/race-play [options]

Options:
  -url string        Base URL of the service (default "http://localhost:9080")
  -level int         Player level reported to the service (default 20)
  -wins int          Level wins to report (default 50)
  -pace duration     Pause between level wins (default 0)
  -timeout duration  HTTP request timeout (default 10s)
  -finalize          Force finalize through /debug when the race is still running
  -extend            Accept an extend offer instead of declining it
  -output string     Write a JSON report to this file
  -log string        Log file (default: race_play_TIMESTAMP.log)
  -verbose           Log every request
  -help              Show this help message

Examples:
  # Win the whole race as fast as possible
  go run ./cmd/race-play

  # Win a few levels slowly, then end the race through the debug routes
  go run ./cmd/race-play -wins 3 -pace 2s -finalize
`)
}
