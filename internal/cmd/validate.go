package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/guidecraft/guidecraft/pkg/guide"
)

func validateCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a guide's structure and condition expressions",
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

			findings := g.Validate()
			for _, finding := range findings {
				fmt.Fprintln(cmd.ErrOrStderr(), finding)
			}
			if len(findings) > 0 {
				return errors.Errorf("%d finding(s)", len(findings))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	return &cmd
}
