package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ds124wfegd/captioner/internal/entity"
	"github.com/ds124wfegd/captioner/internal/pkg/caption"
	"github.com/ds124wfegd/captioner/internal/pkg/codec"
	"github.com/ds124wfegd/captioner/internal/pkg/renderer"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	in       string
	captions string
	out      string
	format   string
}

func newRenderCmd(opts *options, log *logrus.Logger) *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw captions from a JSON file onto an image",
		Example: `  captionctl render --in photo.jpg --captions captions.json --out out.png
  cat captions.json | captionctl render --in photo.png --captions - --out out.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, log, f)
		},
	}

	cmd.Flags().StringVar(&f.in, "in", "", "input image (jpg, jpeg, png)")
	cmd.Flags().StringVar(&f.captions, "captions", "", "captions JSON file, - for stdin")
	cmd.Flags().StringVar(&f.out, "out", "", "output image path")
	cmd.Flags().StringVar(&f.format, "format", "", "png or jpeg (default: from --out extension)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runRender(cmd *cobra.Command, opts *options, log *logrus.Logger, f renderFlags) error {
	captions, err := readCaptions(cmd.InOrStdin(), f.captions)
	if err != nil {
		return err
	}
	if err := entity.ValidateCaptions(captions, opts.maxCaptions); err != nil {
		return err
	}

	src, err := os.Open(f.in)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer src.Close()

	decoded, err := codec.Decode(src, opts.maxPixels)
	if err != nil {
		return err
	}

	fonts := caption.NewFontResolver(opts.fontsDir, opts.candidates)
	out, err := renderer.RenderImage(caption.NewCompositor(fonts, log), decoded.Image, captions, formatFor(f.format, f.out))
	if err != nil {
		return err
	}

	if err := os.WriteFile(f.out, out.Data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	log.WithFields(logrus.Fields{
		"in":           f.in,
		"input_format": decoded.Format,
		"out":          f.out,
		"format":       out.Format,
		"captions":     len(captions),
		"fallbacks":    len(out.Fallbacks),
	}).Info("Image rendered")
	if want := formatFor(f.format, f.out); want == codec.FormatJPEG && out.Format != want {
		log.Warn("Result has transparency, written as PNG")
	}
	return nil
}

func readCaptions(stdin io.Reader, path string) ([]entity.CaptionSpec, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return nil, nil
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read captions: %w", err)
	}

	var captions []entity.CaptionSpec
	if err := json.Unmarshal(data, &captions); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidCaption, err)
	}
	return captions, nil
}

// formatFor prefers the explicit format and otherwise follows the output extension.
func formatFor(format, out string) string {
	if format != "" {
		return format
	}
	switch strings.ToLower(filepath.Ext(out)) {
	case ".jpg", ".jpeg":
		return codec.FormatJPEG
	default:
		return codec.FormatPNG
	}
}
