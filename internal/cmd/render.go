package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guidecraft/guidecraft/pkg/document"
	"github.com/guidecraft/guidecraft/pkg/guide"
)

func renderCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "render [file]",
		Short: "Render a guide (JSON) back into a document tree",
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

			root, warnings := document.Render(g)
			for _, warning := range warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", warning)
			}

			out, err := json.MarshalIndent(root, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	return &cmd
}
