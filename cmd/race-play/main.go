package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/ghostrace/internal/playtest"
)

// Default configuration constants.
const (
	defaultLevel       = 20
	defaultLevelWins   = 50
	defaultTimeout     = 10 * time.Second
	defaultPlayTimeout = 30 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		level      = flag.Int("level", defaultLevel, "Player level reported to the service")
		wins       = flag.Int("wins", defaultLevelWins, "Level wins to report")
		pace       = flag.Duration("pace", 0, "Pause between level wins")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		finalize   = flag.Bool("finalize", false, "Force finalize when the race is still running")
		extend     = flag.Bool("extend", false, "Accept an extend offer")
		outputFile = flag.String("output", "", "JSON report file")
		logFile    = flag.String("log", "", "Log file (default: race_play_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		playtest.ShowHelp()
		return
	}

	if err := playtest.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultPlayTimeout)
	defer cancel()

	cfg := &playtest.Config{
		BaseURL:    *baseURL,
		Level:      *level,
		LevelWins:  *wins,
		Pace:       *pace,
		Timeout:    *timeout,
		Finalize:   *finalize,
		Extend:     *extend,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}

	if _, err := playtest.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Play failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
