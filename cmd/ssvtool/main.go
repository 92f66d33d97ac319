package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/beevik/etree"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ijknabla/omsvalues"
	"github.com/ijknabla/omsvalues/policyfile"
)

var version = "0.1.0-dev"

// policyEnvPrefix selects environment variables overriding policy rows,
// e.g. SSVTOOL_POLICY_SIMULATION__EXTERNAL__WRITE=deny.
const policyEnvPrefix = "SSVTOOL_POLICY_"

// env carries what subcommands share: the file system and the logger built
// from --log-level.
type env struct {
	fs     afero.Fs
	stderr io.Writer
	logger *slog.Logger
}

func main() {
	rootCmd := newRootCmd(&env{fs: afero.NewOsFs(), stderr: os.Stderr})
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(e *env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ssvtool",
		Short: "Inspect start values and parameter resources of an extracted SSP",
		Long: `ssvtool loads the parameter bindings of one component from an extracted
SSP directory, together with the declared defaults of its FMU, and prints the
values the simulator would use.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			e.logger = newLogger(level, e.stderr)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("log-level", "l", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newDumpCmd(e),
		newGetCmd(e),
		newTemplateCmd(e),
	)
	return rootCmd
}

// newLogger creates a leveled slog.Logger writing to w.
func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// addSourceFlags registers the flags selecting what to load into a store.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("fmu", "", "extracted FMU directory holding modelDescription.xml")
	cmd.Flags().String("ssd", "", "system structure file, relative to the project directory")
	cmd.Flags().String("component", "", "component whose parameter bindings are read from --ssd (default: the first bindings found)")
	cmd.Flags().String("ssp-version", "1.0", "SSP version of --ssd")
	cmd.Flags().String("ssv", "", "parameter set to attach, relative to the project directory")
	cmd.Flags().String("ssm", "", "parameter mapping paired with --ssv")
	cmd.Flags().String("policy", "", "resolution policy file (yaml, json or toml)")
}

// loadValues builds a store from the project directory dir and the source flags.
func loadValues(cmd *cobra.Command, e *env, dir string) (*omsvalues.Values, error) {
	fmuDir, _ := cmd.Flags().GetString("fmu")
	ssd, _ := cmd.Flags().GetString("ssd")
	component, _ := cmd.Flags().GetString("component")
	sspVersion, _ := cmd.Flags().GetString("ssp-version")
	ssv, _ := cmd.Flags().GetString("ssv")
	ssm, _ := cmd.Flags().GetString("ssm")
	policyPath, _ := cmd.Flags().GetString("policy")

	policy, err := policyfile.Load(policyPath, policyfile.Options{
		Required:  true,
		Fs:        e.fs,
		EnvPrefix: policyEnvPrefix,
	})
	if err != nil {
		return nil, err
	}
	v := omsvalues.New(omsvalues.WithLogger(e.logger), omsvalues.WithPolicy(policy))
	snapshot := omsvalues.NewDirSnapshot(e.fs, dir)

	if fmuDir != "" {
		if err := v.ParseModelDescription(e.fs, fmuDir); err != nil {
			return nil, err
		}
	}
	if ssd != "" {
		bindings, err := findBindings(snapshot, ssd, component)
		if err != nil {
			return nil, err
		}
		if bindings != nil {
			if err := v.ImportFromSnapshot(bindings, sspVersion, snapshot); err != nil {
				return nil, err
			}
		}
	}
	if ssv != "" {
		if err := v.ImportResource(snapshot, ssv, ssm); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// findBindings returns the ParameterBindings of component in the ssd
// document, or the first one in the document when component is empty.
func findBindings(snapshot omsvalues.Snapshot, ssd, component string) (*etree.Element, error) {
	data, err := snapshot.ReadResource(ssd)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ssd, err)
	}
	path := "//ParameterBindings"
	if component != "" {
		path = fmt.Sprintf("//Component[@name='%s']/ParameterBindings", component)
	}
	return doc.FindElement(path), nil
}

func parseState(s string) (omsvalues.ModelState, error) {
	state, ok := omsvalues.ParseModelState(s)
	if !ok {
		names := make([]string, 0, len(omsvalues.ModelStates()))
		for _, st := range omsvalues.ModelStates() {
			names = append(names, st.String())
		}
		return 0, fmt.Errorf("unknown model state %q (expected one of %s)", s, strings.Join(names, ", "))
	}
	return state, nil
}
