package http

import (
	"context"
	"io"

	"clinicpulse/internal/services"
)

// ReportGenerator is the service contract the report handler depends on.
// It is satisfied by services.ReportService and stubbed in tests.
type ReportGenerator interface {
	// Generate runs the full pipeline and returns the figure and table.
	Generate(ctx context.Context, r io.Reader) (*services.ReportResult, error)

	// GeneratePDF runs the pipeline and prints the figure to PDF.
	GeneratePDF(ctx context.Context, r io.Reader) ([]byte, error)
}
