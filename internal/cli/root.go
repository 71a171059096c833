// Package cli implements captionctl, which composes captions locally without
// the HTTP service.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/ds124wfegd/captioner/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type options struct {
	fontsDir    string
	candidates  []string
	maxCaptions int
	maxPixels   int
	verbose     bool
}

// Execute runs the captionctl command tree.
func Execute() error {
	return NewRootCmd(os.Stderr).ExecuteContext(context.Background())
}

// NewRootCmd builds the command tree. Logs go to logOut.
func NewRootCmd(logOut io.Writer) *cobra.Command {
	opts := &options{}
	log := logrus.New()
	log.SetOutput(logOut)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	root := &cobra.Command{
		Use:          "captionctl",
		Short:        "captionctl draws text captions onto images",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetLevel(logrus.InfoLevel)
			if opts.verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&opts.fontsDir, "fonts-dir", config.GetEnv("FONTS_DIR", "./fonts"), "directory holding the candidate font files")
	flags.StringSliceVar(&opts.candidates, "font-candidates", nil, "font files that may be loaded from --fonts-dir (default: built-in list)")
	flags.IntVar(&opts.maxCaptions, "max-captions", 5, "maximum number of captions per image")
	flags.IntVar(&opts.maxPixels, "max-pixels", 40_000_000, "reject images with more pixels than this (0 disables)")

	root.AddCommand(newRenderCmd(opts, log))
	root.AddCommand(newFontsCmd(opts))

	return root
}
