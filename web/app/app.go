// Package app wires the rowscope commands.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Tutortoise/rowscope/web/models"
	"github.com/Tutortoise/rowscope/web/scanline"
	"github.com/Tutortoise/rowscope/web/server"
	"github.com/Tutortoise/rowscope/web/viewer"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Process exit statuses. ExitNotFound is how a shell sees exit(-1).
const (
	ExitOK          = 0
	ExitUnsupported = 1
	ExitNotFound    = 255
)

var (
	debugMode bool
)

func init() {
	debugMode = os.Getenv("DEBUG") == "true"
}

// WindowOpener creates the interactive display for the default command.
type WindowOpener func(name string, initial models.Sliders) viewer.Frontend

type options struct {
	row, scale, resize int
	output             string
	windowName         string
	wait               time.Duration
	palette            []string
	addr               string
	channels           string
	out                string
	chart              string
	stats              bool
}

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUnsupported
}

func logTimings(f *viewer.Frame) {
	if debugMode {
		t := f.Timings
		log.Printf("[DEBUG] Frame: %d - Processing times:\n"+
			"\tSample: %v\n"+
			"\tReset:  %v\n"+
			"\tDraw:   %v\n"+
			"\tResize: %v\n"+
			"\tShow:   %v\n"+
			"\tTotal:  %v",
			t.Frame,
			t.Sample,
			t.Reset,
			t.Draw,
			t.Resize,
			t.Show,
			t.Total)
	}
}

func addViewFlags(fs *pflag.FlagSet, opts *options) {
	fs.IntVar(&opts.row, "row", scanline.DefaultRowPercent, "initial row position in percent")
	fs.IntVar(&opts.scale, "scale", scanline.DefaultScale, "initial curve scale in percent")
	fs.IntVar(&opts.resize, "resize", scanline.DefaultResize, "initial display size in percent")
	fs.StringSliceVar(&opts.palette, "palette", scanline.DefaultPaletteHex, "curve colors for red, green, blue and gray")
}

func addLoopFlags(fs *pflag.FlagSet, opts *options) {
	fs.StringVar(&opts.output, "output", scanline.DefaultOutputPath, "snapshot path written by the s key")
	fs.DurationVar(&opts.wait, "wait", viewer.DefaultWaitDelay, "key wait per frame")
}

func imagePath(args []string) string {
	if len(args) == 0 {
		return scanline.DefaultImagePath
	}
	return args[len(args)-1]
}

// loadSource prints the detected format and size, then validates the image.
func loadSource(out io.Writer, path string) (*scanline.Source, error) {
	src, err := scanline.Load(path)
	if src != nil {
		fmt.Fprintln(out, src.Format)
		if src.Grid != nil {
			fmt.Fprintf(out, "%dx%d\n", src.Grid.Height, src.Grid.Width)
		}
	}
	if err == nil {
		return src, nil
	}

	msg := err.Error()
	var le *scanline.LoadError
	if errors.As(err, &le) {
		msg = le.Message
	}
	fmt.Fprintln(out, msg)
	if debugMode {
		log.Printf("[DEBUG] load %s: %v", path, err)
	}
	if errors.Is(err, scanline.ErrNotFound) {
		return nil, &exitError{code: ExitNotFound, err: err}
	}
	return nil, &exitError{code: ExitUnsupported, err: err}
}

func initialState(opts *options) models.DisplayState {
	return models.NewDisplayState(models.Sliders{Row: opts.row, Scale: opts.scale, Resize: opts.resize})
}

func newController(out io.Writer, opts *options, path string) (*viewer.Controller, *viewer.Renderer, scanline.Palette, error) {
	palette, err := scanline.ParsePalette(opts.palette)
	if err != nil {
		return nil, nil, palette, err
	}
	src, err := loadSource(out, path)
	if err != nil {
		return nil, nil, palette, err
	}
	r := viewer.NewRenderer(src.Grid, palette)
	c := viewer.NewController(r, initialState(opts), viewer.Config{
		OutputPath: opts.output,
		WaitDelay:  opts.wait,
		OnFrame:    logTimings,
	})
	return c, r, palette, nil
}

func runWindow(ctx context.Context, out io.Writer, open WindowOpener, opts *options, args []string) error {
	c, r, _, err := newController(out, opts, imagePath(args))
	if err != nil {
		return err
	}
	defer r.Close()

	fmt.Fprintln(out, MsgMenu)
	return c.Run(ctx, open(opts.windowName, c.State().Sliders))
}

func runServe(ctx context.Context, out io.Writer, opts *options, args []string) error {
	c, r, palette, err := newController(out, opts, imagePath(args))
	if err != nil {
		return err
	}
	defer r.Close()

	frontend := server.New(c.State().Sliders, palette, r.Pool().GetMetrics)
	srv := &http.Server{
		Handler:      frontend.Handler(),
		Addr:         opts.addr,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server stopped: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Failed to shut down server: %v", err)
		}
	}()

	fmt.Fprintln(out, MsgMenu)
	fmt.Fprintf(out, MsgServeMenu+"\n", opts.addr)
	return c.Run(ctx, frontend)
}

func parseChannels(s string) ([models.NumChannels]bool, error) {
	var visible [models.NumChannels]bool
	keys := map[rune]models.Channel{'r': models.Red, 'g': models.Green, 'b': models.Blue, 'k': models.Gray}
	for _, ch := range strings.ToLower(s) {
		c, ok := keys[ch]
		if !ok {
			return visible, fmt.Errorf("unknown channel %q, want any of r, g, b, k", ch)
		}
		visible[c] = true
	}
	return visible, nil
}

// runRender writes the resized display of a single frame, plus an optional
// chart and statistics.
func runRender(ctx context.Context, out io.Writer, opts *options, args []string) error {
	palette, err := scanline.ParsePalette(opts.palette)
	if err != nil {
		return err
	}
	visible, err := parseChannels(opts.channels)
	if err != nil {
		return err
	}
	src, err := loadSource(out, imagePath(args))
	if err != nil {
		return err
	}

	r := viewer.NewRenderer(src.Grid, palette)
	defer r.Close()

	state := initialState(opts)
	state.Visible = visible
	frame, err := r.Render(ctx, state)
	if err != nil {
		return err
	}
	defer r.Release(frame)
	logTimings(frame)

	if err := viewer.Save(frame.Display, opts.out); err != nil {
		return err
	}
	fmt.Fprintf(out, MsgSaved+"\n", opts.out)

	if opts.chart != "" {
		if err := writeChart(opts.chart, frame.Profile, visible, palette); err != nil {
			return err
		}
		fmt.Fprintf(out, MsgSaved+"\n", opts.chart)
	}

	if opts.stats {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(scanline.Stats(frame.Profile)); err != nil {
			return fmt.Errorf("encode stats: %w", err)
		}
	}
	return nil
}

func writeChart(path string, p *scanline.Profile, visible [models.NumChannels]bool, palette scanline.Palette) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()
	return scanline.RenderChart(f, p, scanline.ChartOptions{Visible: visible, Palette: palette})
}

// NewRootCommand builds the rowscope command tree. open supplies the native
// window used by the default command.
func NewRootCommand(ctx context.Context, open WindowOpener) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "rowscope [image]",
		Short:         "Plot the color intensities of one image row over the image",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindow(ctx, cmd.OutOrStdout(), open, opts, args)
		},
	}
	addViewFlags(root.PersistentFlags(), opts)
	addLoopFlags(root.Flags(), opts)
	root.Flags().StringVar(&opts.windowName, "window", "EML4840", "window title")

	serve := &cobra.Command{
		Use:   "serve [image]",
		Short: "Run the viewer behind a local web page",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(ctx, cmd.OutOrStdout(), opts, args)
		},
	}
	addLoopFlags(serve.Flags(), opts)
	serve.Flags().StringVar(&opts.addr, "addr", "127.0.0.1:8080", "listen address")

	render := &cobra.Command{
		Use:   "render [image]",
		Short: "Render a single annotated frame without a display",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(ctx, cmd.OutOrStdout(), opts, args)
		},
	}
	render.Flags().StringVar(&opts.channels, "channels", "rgbk", "curves to draw: any of r, g, b, k")
	render.Flags().StringVar(&opts.out, "out", scanline.DefaultOutputPath, "output image path")
	render.Flags().StringVar(&opts.chart, "chart", "", "also write a profile chart PNG to this path")
	render.Flags().BoolVar(&opts.stats, "stats", false, "print per-channel row statistics as JSON")

	root.AddCommand(serve, render)
	return root
}
