package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guidecraft/guidecraft/pkg/guide"
)

func fmtCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "fmt [file]",
		Short: "Normalize a guide: coalesce adjacent markdown blocks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}

			g, err := guide.Parse(data)
			if err != nil {
				return err
			}

			g.Blocks = guide.MergeMarkdownBlocks(g.Blocks)
			out, err := g.Marshal()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	return &cmd
}
