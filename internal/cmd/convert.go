package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/guidecraft/guidecraft/pkg/document"
	"github.com/guidecraft/guidecraft/pkg/guide"
)

func convertCmd() *cobra.Command {
	var (
		guideID    string
		guideTitle string
	)

	cmd := cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a document tree (JSON) to a guide",
		Long:  "Reads a rich-text document tree from a file or stdin and writes the converted guide JSON to stdout. Conversion warnings go to stderr.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}

			root, err := document.Parse(data)
			if err != nil {
				return err
			}

			result := document.Convert(root)
			for _, warning := range result.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", warning)
			}

			g := guide.Guide{
				ID:            guideID,
				Title:         guideTitle,
				SchemaVersion: guide.SchemaVersion,
				Blocks:        result.Blocks,
			}
			out, err := g.Marshal()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&guideID, "id", "", "Guide id stamped on the output.")
	cmd.Flags().StringVar(&guideTitle, "title", "", "Guide title stamped on the output.")

	return &cmd
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}
