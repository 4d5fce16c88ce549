package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tutortoise/rowscope/web/app"
	"github.com/Tutortoise/rowscope/web/models"
	"github.com/Tutortoise/rowscope/web/scanline"
	"github.com/Tutortoise/rowscope/web/viewer"
	"github.com/Tutortoise/rowscope/web/window"
)

func openWindow(name string, initial models.Sliders) viewer.Frontend {
	return window.Open(name, initial)
}

func main() {
	// Add basic logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := app.NewRootCommand(ctx, openWindow).Execute()
	stop()
	if err != nil {
		var le *scanline.LoadError
		if !errors.As(err, &le) {
			log.Printf("Error: %v", err)
		}
		os.Exit(app.ExitCode(err))
	}
}
