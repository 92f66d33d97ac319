package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ijknabla/omsvalues/cref"
)

func newGetCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <project-dir> <name>",
		Short: "Resolve one variable",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := cref.Parse(args[1])
			if err != nil {
				return err
			}
			v, err := loadValues(cmd, e, args[0])
			if err != nil {
				return err
			}
			stateName, _ := cmd.Flags().GetString("state")
			state, err := parseState(stateName)
			if err != nil {
				return err
			}
			external, _ := cmd.Flags().GetBool("external")

			res, err := v.Lookup(name, external, state)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (%s) (source: %s)\n",
				name, res.Value.Literal(), res.Value.Type(), res.SourceName())
			return err
		},
	}
	addSourceFlags(cmd)
	cmd.Flags().String("state", "virgin", "model state selecting the policy row")
	cmd.Flags().Bool("external", false, "resolve as an external input")
	return cmd
}
