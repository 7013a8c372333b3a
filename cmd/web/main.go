package main

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"os"

	"clinicpulse/internal/app"
)

//go:embed web/index.html
var webFiles embed.FS

func main() {
	webFS, err := fs.Sub(webFiles, "web")
	if err != nil {
		slog.Error("failed to open embedded web assets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	application, err := app.NewApplication(webFS)
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
