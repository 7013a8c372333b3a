// Package exporter renders a built report figure into its delivery
// formats: a standalone HTML page and a PDF printed from that page by
// headless Chrome.
package exporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"

	"clinicpulse/internal/config"
	"clinicpulse/internal/report"
)

// Exporter renders report figures to HTML and PDF.
type Exporter struct {
	cfg    config.ReportConfig
	logger *slog.Logger
}

// New creates an exporter with the given report configuration.
func New(cfg config.ReportConfig, logger *slog.Logger) *Exporter {
	return &Exporter{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "exporter")),
	}
}

// reportPage is the standalone report document. The body attribute flips
// once the plot has drawn; the PDF renderer waits on it.
const reportPage = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Clinic Revenue Report</title>
<script src="{{.PlotlyJS}}"></script>
<style>body { margin: 0; font-family: sans-serif; }</style>
</head>
<body>
<div id="report"></div>
<script>
var fig = {{.Figure}};
Plotly.newPlot("report", fig.data, fig.layout, {displayModeBar: false}).then(function () {
  document.body.setAttribute("data-report-ready", "1");
});
</script>
</body>
</html>
`

var pageTemplate = template.Must(template.New("report").Parse(reportPage))

// HTML renders the figure into a self-contained report page.
func (e *Exporter) HTML(fig *report.Figure) ([]byte, error) {
	figJSON, err := json.Marshal(fig)
	if err != nil {
		return nil, fmt.Errorf("failed to encode figure: %w", err)
	}

	var buf bytes.Buffer
	data := struct {
		PlotlyJS string
		Figure   template.JS
	}{
		PlotlyJS: e.cfg.PlotlyJS,
		Figure:   template.JS(figJSON),
	}
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render report page: %w", err)
	}

	return buf.Bytes(), nil
}
