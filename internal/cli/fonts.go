package cli

import (
	"fmt"

	"github.com/ds124wfegd/captioner/internal/pkg/caption"
	"github.com/spf13/cobra"
)

func newFontsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fonts",
		Short: "List the font references a caption may use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := caption.NewFontResolver(opts.fontsDir, opts.candidates)
			for _, f := range resolver.Fonts() {
				kind := "file"
				if f.BuiltIn {
					kind = "built-in"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-32s %s\n", f.Name, kind)
			}
			return nil
		},
	}
}
