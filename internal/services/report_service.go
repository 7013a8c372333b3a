// Package services orchestrates the report pipeline: parse, normalize,
// build, render. Each invocation is request scoped and shares no state
// with any other run.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"clinicpulse/internal/dataprocessing"
	"clinicpulse/internal/exporter"
	"clinicpulse/internal/infrastructure"
	"clinicpulse/internal/report"
)

// ReportResult bundles the outputs of one pipeline run: the composed
// figure and the normalized table it was built from. The table is echoed
// back so the operator can inspect the data behind the chart.
type ReportResult struct {
	Figure *report.Figure                  `json:"figure"`
	Table  *dataprocessing.NormalizedTable `json:"table"`
}

// ReportService runs the full spreadsheet-to-report pipeline.
type ReportService struct {
	exporter *exporter.Exporter
	metrics  *infrastructure.Metrics
	logger   *slog.Logger
}

// NewReportService creates a report service.
func NewReportService(exp *exporter.Exporter, metrics *infrastructure.Metrics, logger *slog.Logger) *ReportService {
	return &ReportService{
		exporter: exp,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "report_service")),
	}
}

// Generate runs parse, normalize and build on one uploaded spreadsheet.
// Any failure aborts the run; no partial result is ever returned.
func (s *ReportService) Generate(ctx context.Context, r io.Reader) (*ReportResult, error) {
	start := time.Now()

	raw, err := dataprocessing.ParseReport(r)
	if err != nil {
		s.fail(ctx, "parse", err)
		return nil, fmt.Errorf("parse: %w", err)
	}

	table, err := dataprocessing.Normalize(raw)
	if err != nil {
		s.fail(ctx, "normalize", err)
		return nil, fmt.Errorf("normalize: %w", err)
	}

	fig, err := report.Build(table)
	if err != nil {
		s.fail(ctx, "build", err)
		return nil, fmt.Errorf("build: %w", err)
	}

	s.metrics.ReportsBuilt.Inc()
	s.metrics.ObserveBuild(start)
	s.logger.InfoContext(ctx, "report built",
		slog.Int("patients", table.Len()),
		slog.String("as_of", table.Records[0].VisitDate),
		slog.String("duration", time.Since(start).String()))

	return &ReportResult{Figure: fig, Table: table}, nil
}

// GeneratePDF runs the pipeline and prints the figure to PDF.
func (s *ReportService) GeneratePDF(ctx context.Context, r io.Reader) ([]byte, error) {
	result, err := s.Generate(ctx, r)
	if err != nil {
		return nil, err
	}

	pdf, err := s.exporter.PDF(ctx, result.Figure)
	if err != nil {
		s.fail(ctx, "render", err)
		return nil, fmt.Errorf("render: %w", err)
	}

	s.metrics.PDFRenders.Inc()
	return pdf, nil
}

// GenerateHTML runs the pipeline and renders the standalone report page.
func (s *ReportService) GenerateHTML(ctx context.Context, r io.Reader) ([]byte, error) {
	result, err := s.Generate(ctx, r)
	if err != nil {
		return nil, err
	}

	page, err := s.exporter.HTML(result.Figure)
	if err != nil {
		s.fail(ctx, "render", err)
		return nil, fmt.Errorf("render: %w", err)
	}

	return page, nil
}

func (s *ReportService) fail(ctx context.Context, stage string, err error) {
	s.metrics.ReportFailures.WithLabelValues(stage).Inc()
	s.logger.ErrorContext(ctx, "report pipeline failed",
		slog.String("stage", stage),
		slog.String("error", err.Error()))
}
