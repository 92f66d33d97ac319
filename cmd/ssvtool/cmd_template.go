package main

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/spf13/cobra"

	"github.com/ijknabla/omsvalues"
	"github.com/ijknabla/omsvalues/cref"
)

func newTemplateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template <fmu-dir>",
		Short: "Print a parameter set or mapping seeded from an FMU's declared defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefixFlag, _ := cmd.Flags().GetString("prefix")
			prefix, err := cref.Parse(prefixFlag)
			if err != nil {
				return fmt.Errorf("invalid --prefix: %w", err)
			}
			kind, _ := cmd.Flags().GetString("kind")

			v := omsvalues.New(omsvalues.WithLogger(e.logger))
			if err := v.ParseModelDescription(e.fs, args[0]); err != nil {
				return err
			}

			doc := etree.NewDocument()
			doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
			switch kind {
			case "ssv":
				v.ExportToSSVTemplate(&doc.Element, prefix)
			case "ssm":
				v.ExportToSSMTemplate(&doc.Element, prefix)
			default:
				return fmt.Errorf("unknown --kind %q (expected ssv or ssm)", kind)
			}
			doc.Indent(2)
			_, err = doc.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().String("prefix", "", "qualify every name with this prefix")
	cmd.Flags().String("kind", "ssv", "document to generate: ssv or ssm")
	return cmd
}
