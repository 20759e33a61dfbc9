package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Ace0731/Image-Converter/internal/appServer"
	"github.com/Ace0731/Image-Converter/internal/entity"
	"github.com/Ace0731/Image-Converter/internal/service"
	"github.com/Ace0731/Image-Converter/internal/ui"
)

type convertOptions struct {
	out     string
	format  string
	quality int
	plain   bool
}

func newConvertCmd(a *app) *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert [files or folders...]",
		Short: "Resize and convert images into the output folder",
		Example: `  imgconv convert ~/Pictures/trip --out ~/Pictures/web
  imgconv convert a.jpg b.png --format jpeg --quality 70 --out ./small`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, a, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output folder (default from config convert.output_dir)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: webp, jpeg or png (default from config)")
	cmd.Flags().IntVarP(&opts.quality, "quality", "q", 0, "quality 1-100 for webp and jpeg (default from config)")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "plain log output even on a terminal")

	return cmd
}

func runConvert(cmd *cobra.Command, a *app, opts convertOptions, args []string) error {
	cfg := a.cfg
	flags := cmd.Flags()
	if !flags.Changed("format") {
		opts.format = cfg.Convert.Format
	}
	if !flags.Changed("quality") {
		opts.quality = cfg.Convert.Quality
	}
	if !flags.Changed("out") {
		opts.out = cfg.Convert.OutputDir
	}

	session := ui.NewSession(entity.FormatWebP, cfg.Convert.Quality)
	if err := session.SetFormat(opts.format); err != nil {
		return err
	}
	if session.Format.Lossy() {
		if err := session.SetQuality(opts.quality); err != nil {
			return err
		}
	}
	if err := session.SelectFiles(args...); err != nil {
		return err
	}
	if err := session.SelectOutput(opts.out); err != nil {
		return err
	}
	req, err := session.Request()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := ui.Probe(os.Stdout, opts.plain)
	if backend.Interactive() && cfg.Log.File == "" {
		logrus.SetOutput(io.Discard)
	}

	convService, publisher := appServer.NewConversionService(ctx, cfg)
	defer publisher.Close()

	_, err = backend.Run(ctx, len(req.Files), func(ctx context.Context, sink service.Sink) (*entity.Batch, error) {
		return convService.Convert(ctx, req, sink)
	})
	return err
}
