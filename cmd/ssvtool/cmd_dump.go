package main

import (
	"github.com/spf13/cobra"

	"github.com/ijknabla/omsvalues"
)

func newDumpCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <project-dir>",
		Short: "Print every effective value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			jsonOut, _ := cmd.Flags().GetBool("json")
			sources, _ := cmd.Flags().GetBool("sources")

			opts := []omsvalues.DumpOption{omsvalues.AtState(state, external)}
			if jsonOut {
				opts = append(opts, omsvalues.AsJSON())
			}
			if sources {
				opts = append(opts, omsvalues.WithSources())
			}
			return omsvalues.DumpEffective(cmd.OutOrStdout(), v, opts...)
		},
	}
	addSourceFlags(cmd)
	cmd.Flags().String("state", "virgin", "model state selecting the policy row")
	cmd.Flags().Bool("external", false, "resolve as external inputs")
	cmd.Flags().Bool("json", false, "Output as JSON")
	cmd.Flags().Bool("sources", false, "include where each value comes from")
	return cmd
}
