package omsvalues

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ijknabla/omsvalues/cref"
)

// DumpOption configures dump behavior using the functional options pattern.
type DumpOption func(*dumpConfig)

// dumpConfig holds options for DumpEffective.
type dumpConfig struct {
	withSources bool   // Include source attribution for each name
	asJSON      bool   // Output as JSON instead of text format
	indent      string // Indentation for JSON output (default: "  ")
	state       ModelState
	external    bool
}

// WithSources includes source attribution for each name in the output.
func WithSources() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.withSources = true
	}
}

// AsJSON outputs values as JSON instead of text format.
func AsJSON() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.asJSON = true
	}
}

// WithIndent sets the indentation for JSON output.
// Default is two spaces ("  ").
func WithIndent(indent string) DumpOption {
	return func(cfg *dumpConfig) {
		cfg.indent = indent
	}
}

// AtState resolves values with the policy row for (state, externalInput)
// instead of the virgin setup order.
func AtState(state ModelState, externalInput bool) DumpOption {
	return func(cfg *dumpConfig) {
		cfg.state = state
		cfg.external = externalInput
	}
}

// dumpEntry is the JSON shape of one resolved name.
type dumpEntry struct {
	Type   string `json:"type,omitempty"`
	Value  any    `json:"value,omitempty"`
	Source string `json:"source,omitempty"`
	Error  string `json:"error,omitempty"`
}

// DumpEffective writes the effective value of every name known to v, one per
// line as "name = literal (Type)". Names whose resolution fails with
// AmbiguousBinding are listed with the error. Returns an error if writing
// fails.
func DumpEffective(w io.Writer, v *Values, opts ...DumpOption) error {
	if v == nil {
		return fmt.Errorf("values is nil")
	}

	config := dumpConfig{
		indent: "  ",
	}
	for _, opt := range opts {
		opt(&config)
	}

	names := v.knownNames()
	results := make([]resolved, 0, len(names))
	for _, name := range names {
		res, err := v.Lookup(name, config.external, config.state)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		results = append(results, resolved{name: name, res: res, err: err})
	}

	if config.asJSON {
		return dumpAsJSON(w, results, config)
	}
	return dumpAsText(w, results, config)
}

type resolved struct {
	name cref.Name
	res  Resolution
	err  error
}

func dumpAsText(w io.Writer, results []resolved, config dumpConfig) error {
	for _, r := range results {
		var line string
		if r.err != nil {
			line = fmt.Sprintf("%s = <error: %v>", r.name, r.err)
		} else {
			line = fmt.Sprintf("%s = %s (%s)", r.name, r.res.Value.Literal(), r.res.Value.Type())
			if config.withSources {
				line += fmt.Sprintf(" (source: %s)", r.res.SourceName())
			}
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
	}
	return nil
}

func dumpAsJSON(w io.Writer, results []resolved, config dumpConfig) error {
	out := make(map[string]dumpEntry, len(results))
	for _, r := range results {
		if r.err != nil {
			out[r.name.String()] = dumpEntry{Error: r.err.Error()}
			continue
		}
		e := dumpEntry{Type: r.res.Value.Type().String(), Value: jsonValue(r.res.Value)}
		if config.withSources {
			e.Source = r.res.SourceName()
		}
		out[r.name.String()] = e
	}

	var data []byte
	var err error
	if config.indent != "" {
		data, err = json.MarshalIndent(out, "", config.indent)
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

func jsonValue(v Value) any {
	if f, ok := v.Real(); ok {
		return f
	}
	if n, ok := v.Integer(); ok {
		return n
	}
	b, _ := v.Boolean()
	return b
}

// knownNames returns every consumer-side name any layer or resource can
// supply, in cref order.
func (v *Values) knownNames() []cref.Name {
	seen := make(map[cref.Name]bool)
	for _, l := range []*Layer{v.Start, v.Runtime, v.Defaults} {
		for _, n := range l.Names() {
			seen[n] = true
		}
	}
	v.walkResources(func(r *Resource) {
		for _, n := range r.ownNames(false) {
			seen[n] = true
		}
	})
	names := make([]cref.Name, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sortNames(names)
	return names
}
