// Command enginesim computes crank-angle resolved four-stroke cycles and
// writes the results to the configured storage backend, CSV files, plots, or
// a results server.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Katakuri004/HT-Project-Scripts/internal/config"
	"github.com/Katakuri004/HT-Project-Scripts/internal/logging"
	intOtel "github.com/Katakuri004/HT-Project-Scripts/internal/otel"
)

// version info - BuildDate can be set at build time via ldflags
var (
	Version   string = "0.0.1"
	BuildDate string = "unknown"

	appName = "enginesim"
)

var (
	logManager *logging.SlogManager

	// zerolog view of the same log file, used by the database and influx
	// managers
	zlog zerolog.Logger

	logFile *os.File

	otelProvider *intOtel.Provider
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	if args[0] == "version" {
		fmt.Printf("%s %s (built %s)\n", appName, Version, BuildDate)
		return
	}

	if err := config.Load("."); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := setupLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer teardownLogging()

	log := logManager.Logger()
	log.Info("Starting up", "version", Version, "command", args[0])

	var err error
	switch strings.ToLower(args[0]) {
	case "run":
		err = cmdRun(args[1:])
	case "sweep":
		err = cmdSweep(args[1:])
	case "transient":
		err = cmdTransient(args[1:])
	case "export":
		err = cmdExport(args[1:])
	case "plot":
		err = cmdPlot(args[1:])
	case "upload":
		err = cmdUpload(args[1:])
	case "list":
		err = cmdList(args[1:])
	case "backups":
		err = cmdBackups(args[1:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Error("Command failed", "command", args[0], "error", err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
		os.Exit(1)
	}
}

func setupLogging() error {
	sessionStart := time.Now()
	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	path := logging.LogFilePath(logsDir, appName, sessionStart)
	var err error
	logFile, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	graylogAddress := ""
	if viper.GetBool("graylog.enabled") {
		graylogAddress = viper.GetString("graylog.address")
	}

	logManager = logging.NewSlogManager()
	logManager.SetContextProvider(func() []slog.Attr {
		return []slog.Attr{slog.String("app", appName), slog.String("version", Version)}
	})
	logManager.Setup(logFile, viper.GetString("logLevel"), graylogAddress)

	zlog = zerolog.New(zerolog.MultiLevelWriter(
		zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339},
		logFile,
	)).With().Timestamp().Logger()

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		otelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    logFile,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			logManager.Logger().Error("Failed to initialize OTel provider", "error", err)
			otelProvider = nil
		}
	}

	return nil
}

func teardownLogging() {
	if otelProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = otelProvider.Shutdown(ctx)
		cancel()
	}
	if logManager != nil {
		_ = logManager.Close()
	}
	if logFile != nil {
		_ = logFile.Close()
	}
}

func usage() {
	w := io.Writer(os.Stderr)
	fmt.Fprintf(w, "usage: %s <command> [args]\n\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  run                  compute one cycle and store it")
	fmt.Fprintln(w, "  sweep <cr,cr,...>    compute a compression-ratio sweep")
	fmt.Fprintln(w, "  transient [seconds]  print the post-shutdown cooldown series")
	fmt.Fprintln(w, "  export               compute one cycle and write CSV files")
	fmt.Fprintln(w, "  plot                 compute one cycle and render PNG plots")
	fmt.Fprintln(w, "  upload <file>        upload an exported run to the results server")
	fmt.Fprintln(w, "  list                 list stored runs")
	fmt.Fprintln(w, "  backups              list local database dump files")
	fmt.Fprintln(w, "  version              print version and exit")
}
