// Command revreport builds a clinic revenue report from a spreadsheet on
// disk without running the web server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"clinicpulse/internal/config"
	"clinicpulse/internal/exporter"
	"clinicpulse/internal/infrastructure"
	"clinicpulse/internal/services"
)

func main() {
	inFile := flag.String("file", "", "input spreadsheet (.xlsx)")
	outFile := flag.String("out", "", "output file (defaults to figure.<format>)")
	format := flag.String("format", "pdf", "output format: pdf, html or json")
	flag.Parse()

	if *inFile == "" {
		fmt.Fprintln(os.Stderr, "usage: revreport -file report.xlsx [-out figure.pdf] [-format pdf|html|json]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	if err := run(cfg, logger, *inFile, *outFile, *format); err != nil {
		logger.Error("report build failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, inFile, outFile, format string) error {
	f, err := os.Open(inFile)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	metrics := infrastructure.NewMetrics(prometheus.NewRegistry())
	exp := exporter.New(cfg.Report, logger)
	service := services.NewReportService(exp, metrics, logger)

	ctx := context.Background()

	var output []byte
	switch format {
	case "pdf":
		output, err = service.GeneratePDF(ctx, f)
	case "html":
		output, err = service.GenerateHTML(ctx, f)
	case "json":
		var result *services.ReportResult
		result, err = service.Generate(ctx, f)
		if err == nil {
			output, err = json.MarshalIndent(result, "", "  ")
		}
	default:
		return fmt.Errorf("unknown format %q, expected pdf, html or json", format)
	}
	if err != nil {
		return err
	}

	if outFile == "" {
		outFile = "figure." + format
	}
	if err := os.WriteFile(outFile, output, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	logger.Info("report written",
		slog.String("input", inFile),
		slog.String("output", outFile),
		slog.Int("bytes", len(output)))
	return nil
}
