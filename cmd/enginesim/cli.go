package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Katakuri004/HT-Project-Scripts/internal/api"
	"github.com/Katakuri004/HT-Project-Scripts/internal/config"
	"github.com/Katakuri004/HT-Project-Scripts/internal/database"
	"github.com/Katakuri004/HT-Project-Scripts/internal/export"
	"github.com/Katakuri004/HT-Project-Scripts/internal/influx"
	"github.com/Katakuri004/HT-Project-Scripts/internal/logging"
	"github.com/Katakuri004/HT-Project-Scripts/internal/model"
	"github.com/Katakuri004/HT-Project-Scripts/internal/plot"
	"github.com/Katakuri004/HT-Project-Scripts/internal/storage"
	"github.com/Katakuri004/HT-Project-Scripts/internal/sweep"
	"github.com/Katakuri004/HT-Project-Scripts/pkg/cycle"
	"github.com/Katakuri004/HT-Project-Scripts/pkg/transient"
)

// computeTrace runs one cycle from the configured engine parameters.
func computeTrace() (*cycle.Trace, config.RunConfig, error) {
	params, err := config.GetEngineParameters()
	if err != nil {
		return nil, config.RunConfig{}, fmt.Errorf("invalid engine parameters: %w", err)
	}

	rc := config.GetRunConfig()
	trace, err := cycle.Run(rc.Samples, params)
	if err != nil {
		return nil, rc, err
	}
	return trace, rc, nil
}

// openBackend creates and initializes the configured storage backend.
func openBackend() (storage.Backend, error) {
	backend, err := storage.NewBackend(config.GetStorageConfig(), zlog)
	if err != nil {
		return nil, err
	}
	if err := backend.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return backend, nil
}

func cmdRun(args []string) error {
	log := logManager.Logger()

	trace, rc, err := computeTrace()
	if err != nil {
		return err
	}

	tAngle, tPeak := trace.PeakTemperature()
	pAngle, pPeak := trace.PeakPressure()
	log.Info("Cycle computed",
		"samples", trace.Len(),
		"peakTempC", fmt.Sprintf("%.1f", tPeak-cycle.KelvinToCelsiusOffset),
		"peakTempAngle", tAngle,
		"peakPressureBar", fmt.Sprintf("%.1f", pPeak/1e5),
		"peakPressureAngle", pAngle,
	)

	backend, err := openBackend()
	if err != nil {
		return err
	}
	defer backend.Close()

	run, err := model.FromTrace(rc.Label, config.GetString("engine.preset"), rc.RPM, trace)
	if err != nil {
		return err
	}
	if err := backend.StartRun(run); err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}
	if err := backend.EndRun(run.ID); err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	log.Info("Run stored", "runID", run.ID, "label", run.Label)

	if exportable, ok := backend.(storage.Exportable); ok {
		log.Info("Run exported", "path", exportable.GetExportedFilePath())
	}

	if config.GetInfluxConfig().Enabled {
		if err := writeRunSummary(run); err != nil {
			log.Error("Failed to write run summary to InfluxDB", "error", err)
		}
	}

	return nil
}

func writeRunSummary(run *model.Run) error {
	ic := config.GetInfluxConfig()
	manager := influx.NewManager(zlog, ic.BackupDir+"/summaries.gz")
	if err := manager.Connect(); err != nil {
		return err
	}
	defer manager.Close()

	return manager.WriteRunSummary(context.Background(), run)
}

func cmdSweep(args []string) error {
	ratios := []float64{8, 9, 10, 11, 12}
	if len(args) > 0 {
		parsed, err := parseFloats(args[0])
		if err != nil {
			return fmt.Errorf("invalid compression ratios %q: %w", args[0], err)
		}
		ratios = parsed
	}

	params, err := config.GetEngineParameters()
	if err != nil {
		return fmt.Errorf("invalid engine parameters: %w", err)
	}

	backend, err := openBackend()
	if err != nil {
		return err
	}
	defer backend.Close()

	rc := config.GetRunConfig()
	opts := sweep.Options{
		Workers:     config.GetSweepConfig().Workers,
		SampleCount: rc.Samples,
		RPM:         rc.RPM,
		Preset:      config.GetString("engine.preset"),
		Backend:     backend,
	}

	if config.GetInfluxConfig().Enabled {
		ic := config.GetInfluxConfig()
		manager := influx.NewManager(zlog, ic.BackupDir+"/sweeps.gz")
		if err := manager.Connect(); err != nil {
			return fmt.Errorf("connecting to InfluxDB for sweep metrics: %w", err)
		}
		defer manager.Close()

		start := time.Now()
		opts.Progress = func(completed, total int) {
			bucket, point := influx.SweepProgressPoint(rc.Label, completed, total, time.Since(start))
			if err := manager.WritePoint(context.Background(), bucket, point); err != nil {
				logManager.Logger().Error("Failed to write sweep progress", "error", err)
			}
		}
	}

	runner, err := sweep.NewRunner(opts, logging.NewDispatcherLogger(logManager.Logger()))
	if err != nil {
		return err
	}

	jobs := sweep.CompressionRatioJobs(params, ratios, rc.Label)
	results, err := runner.Run(context.Background(), jobs)
	if err != nil {
		return err
	}

	failures := 0
	for _, res := range results {
		if res.Err != nil {
			failures++
			continue
		}
		_, tPeak := res.Trace.PeakTemperature()
		_, pPeak := res.Trace.PeakPressure()
		fmt.Printf("%-24s peak %7.1f °C  %6.1f bar\n",
			res.Job.Label, tPeak-cycle.KelvinToCelsiusOffset, pPeak/1e5)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d sweep jobs failed", failures, len(results))
	}
	return nil
}

func cmdTransient(args []string) error {
	spanSeconds := 500.0
	if len(args) > 0 {
		parsed, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid span %q: %w", args[0], err)
		}
		spanSeconds = parsed
	}

	m := transient.DefaultModel()
	times, tempsC, pressuresPa, err := m.Series(spanSeconds, 101)
	if err != nil {
		return err
	}

	fmt.Println("Time (seconds),Temperature (°C),Pressure (bar)")
	for i := range times {
		fmt.Printf("%.2f,%.4f,%.6f\n", times[i], tempsC[i], pressuresPa[i]/1e5)
	}
	return nil
}

func cmdExport(args []string) error {
	trace, rc, err := computeTrace()
	if err != nil {
		return err
	}

	outputDir := config.GetStorageConfig().Memory.OutputDir
	paths, err := export.Files(outputDir, rc.Label, trace, rc.RPM)
	if err != nil {
		return err
	}

	for _, path := range paths {
		fmt.Println(path)
	}
	return nil
}

func cmdPlot(args []string) error {
	trace, rc, err := computeTrace()
	if err != nil {
		return err
	}

	renderer := plot.NewRenderer(config.GetPlotConfig())
	paths, err := renderer.Render(rc.Label, trace)
	if err != nil {
		return err
	}

	for _, path := range paths {
		fmt.Println(path)
	}
	return nil
}

func cmdUpload(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("upload needs a file path")
	}

	ac := config.GetAPIConfig()
	rc := config.GetRunConfig()
	client := api.New(ac.ServerURL, ac.APIKey)

	if err := client.Healthcheck(); err != nil {
		return fmt.Errorf("results server unreachable: %w", err)
	}

	preset := config.GetString("engine.preset")
	return client.Upload(args[0], api.UploadMetadata{
		Label:       rc.Label,
		Preset:      preset,
		RPM:         rc.RPM,
		SampleCount: rc.Samples,
	})
}

func cmdList(args []string) error {
	backend, err := openBackend()
	if err != nil {
		return err
	}
	defer backend.Close()

	runs, err := backend.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No stored runs.")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("%4d  %-24s %s  %5d samples  peak %7.1f °C  %6.1f bar\n",
			run.ID, run.Label, run.StartedAt.Format("2006-01-02 15:04:05"),
			run.SampleCount,
			run.PeakTempK-cycle.KelvinToCelsiusOffset,
			run.PeakPressurePa/1e5,
		)
	}
	return nil
}

func cmdBackups(args []string) error {
	dir := filepath.Dir(config.GetStorageConfig().SQLite.Path)
	paths, err := database.GetBackupDBPaths(dir)
	if err != nil {
		return fmt.Errorf("failed to list dump files in %s: %w", dir, err)
	}
	if len(paths) == 0 {
		fmt.Printf("No database dumps in %s.\n", dir)
		return nil
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %8d bytes  %s\n",
			info.ModTime().Format("2006-01-02 15:04:05"), info.Size(), path)
	}
	return nil
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
