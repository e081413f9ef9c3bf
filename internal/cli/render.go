package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/park285/boardimage/internal/annotate"
	"github.com/park285/boardimage/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// renderFlags maps each option flag onto its request parameter.
var renderFlags = []struct {
	flag, param, usage string
}{
	{"orientation", annotate.ParamOrientation, "side at the bottom: white or black"},
	{"highlight", annotate.ParamHighlight, "squares to highlight, e.g. e4,d5"},
	{"arrow", annotate.ParamArrow, "arrow from one square to another, e.g. e2e4"},
	{"arrow-color", annotate.ParamArrowColor, "arrow colour name from the theme palette"},
	{"lastmove", annotate.ParamLastMove, "last move to mark, e.g. e2e4"},
	{"check", annotate.ParamCheck, "square of the king in check"},
	{"marks", annotate.ParamMarks, "squares to cross out"},
	{"theme", annotate.ParamTheme, "theme name"},
	{"size", annotate.ParamSize, "square size in pixels"},
	{"format", annotate.ParamFormat, "output format: svg or png"},
}

type renderOpts struct {
	output  string
	verbose bool
	params  map[string]string
}

func newRenderCmd() *cobra.Command {
	var (
		opts        renderOpts
		flip        bool
		coordinates bool
	)

	cmd := &cobra.Command{
		Use:   "render <fen>",
		Short: "Render a single position to a file or stdout",
		Long: "Render a single position. The position may be a FEN, a bare placement field or\n" +
			"\"startpos\"; FEN fields may be passed as separate arguments.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.params = map[string]string{}
			for _, f := range renderFlags {
				if cmd.Flags().Changed(f.flag) {
					opts.params[f.param] = cmd.Flags().Lookup(f.flag).Value.String()
				}
			}
			if cmd.Flags().Changed("flip") {
				opts.params[annotate.ParamFlip] = fmt.Sprint(flip)
			}
			if cmd.Flags().Changed("coordinates") {
				opts.params[annotate.ParamCoordinates] = fmt.Sprint(coordinates)
			}
			return runRender(cmd.Context(), strings.Join(args, " "), &opts, cmd.OutOrStdout())
		},
	}

	for _, f := range renderFlags {
		cmd.Flags().String(f.flag, "", f.usage)
	}
	cmd.Flags().BoolVar(&flip, "flip", false, "flip the board after orientation is applied")
	cmd.Flags().BoolVar(&coordinates, "coordinates", false, "draw file and rank labels")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")
	return cmd
}

func runRender(ctx context.Context, notation string, opts *renderOpts, stdout io.Writer) error {
	logger := zap.NewNop()
	if opts.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = l
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	d, err := buildDeps(cfg, logger)
	if err != nil {
		return err
	}

	if _, ok := opts.params[annotate.ParamFormat]; !ok && opts.output != "" {
		if f, err := annotate.ParseFormat(strings.TrimPrefix(filepath.Ext(opts.output), ".")); err == nil {
			opts.params[annotate.ParamFormat] = string(f)
		}
	}

	img, err := d.Service.Render(ctx, notation, opts.params)
	if err != nil {
		return err
	}
	logger.Debug("rendered",
		zap.String("format", string(img.Format)),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height),
		zap.String("etag", img.ETag),
	)

	if opts.output == "" {
		_, err = stdout.Write(img.Data)
		return err
	}
	if err := os.WriteFile(opts.output, img.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	logger.Info("wrote", zap.String("path", opts.output))
	return nil
}
