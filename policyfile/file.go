package policyfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/ijknabla/omsvalues"
)

// ErrCodeUnknownKey marks a key that is not <state>.<external|internal>.<read|write>.
const ErrCodeUnknownKey = "unknown_key"

// Options configures policy file loading.
type Options struct {
	// Format: "yaml", "json", or "toml". Auto-detected from extension if empty.
	Format string

	// Required: if true, missing files cause an error. Default: false (returns DefaultPolicy).
	Required bool

	// Fs is the file system to read from. Default: the OS file system.
	Fs afero.Fs

	// EnvPrefix enables overrides from environment variables starting with
	// the prefix (case-insensitive), e.g. with "SSVTOOL_POLICY_":
	// SSVTOOL_POLICY_SIMULATION__EXTERNAL__READ=runtime,start
	EnvPrefix string
}

// Load reads the policy file at path and overlays its rows on
// omsvalues.DefaultPolicy. An empty path skips the file. With EnvPrefix set,
// matching environment variables override the file. The result is
// validated; problems are reported together as a *omsvalues.ValidationError.
func Load(path string, opts Options) (*omsvalues.Policy, error) {
	flattened := make(map[string]any)
	if path != "" {
		raw, err := readFile(path, opts)
		if err != nil {
			return nil, err
		}
		flattenMap("", raw, flattened)
	}
	if opts.EnvPrefix != "" {
		for key, value := range envKeys(opts.EnvPrefix, os.Environ()) {
			flattened[key] = value
		}
	}
	return Build(flattened)
}

func readFile(path string, opts Options) (map[string]any, error) {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			if opts.Required {
				return nil, fmt.Errorf("required policy file not found: %s: %w", path, err)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("read policy file %s: %w", path, err)
	}

	format := opts.Format
	if format == "" {
		format = inferFormat(path)
	}
	raw, err := decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s file %s: %w", strings.ToUpper(format), path, err)
	}
	return raw, nil
}

// Parse decodes policy content already in memory.
func Parse(format string, data []byte) (*omsvalues.Policy, error) {
	raw, err := decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s policy: %w", strings.ToUpper(format), err)
	}
	flattened := make(map[string]any)
	flattenMap("", raw, flattened)
	return Build(flattened)
}

func decode(format string, data []byte) (map[string]any, error) {
	var raw map[string]any
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case "toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported file format: %q (supported: yaml, json, toml)", format)
	}
	return raw, nil
}

// Build applies flattened keys such as "simulation.external.read" to a copy
// of the default policy.
func Build(flat map[string]any) (*omsvalues.Policy, error) {
	policy := omsvalues.DefaultPolicy()
	var issues []omsvalues.Issue

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		parts := strings.Split(key, ".")
		if len(parts) != 3 {
			issues = append(issues, omsvalues.Issue{
				Path:    key,
				Code:    ErrCodeUnknownKey,
				Message: "expected <state>.<external|internal>.<read|write>",
			})
			continue
		}
		state, ok := omsvalues.ParseModelState(parts[0])
		if !ok {
			issues = append(issues, omsvalues.Issue{
				Path:    key,
				Code:    omsvalues.ErrCodeUnknownState,
				Message: fmt.Sprintf("unknown model state %q", parts[0]),
			})
			continue
		}
		var external bool
		switch parts[1] {
		case "external":
			external = true
		case "internal":
		default:
			issues = append(issues, omsvalues.Issue{
				Path:    key,
				Code:    ErrCodeUnknownKey,
				Message: fmt.Sprintf("expected external or internal, got %q", parts[1]),
			})
			continue
		}

		rule := policy.Rule(state, external)
		switch parts[2] {
		case "read":
			read, err := toSources(flat[key])
			if err != nil {
				issues = append(issues, omsvalues.Issue{Path: key, Code: omsvalues.ErrCodeUnknownSource, Message: err.Error()})
				continue
			}
			rule.Read = read
		case "write":
			s, ok := flat[key].(string)
			if !ok {
				issues = append(issues, omsvalues.Issue{
					Path:    key,
					Code:    omsvalues.ErrCodeUnknownWrite,
					Message: fmt.Sprintf("expected string, got %T", flat[key]),
				})
				continue
			}
			rule.Write = omsvalues.WriteTarget(strings.ToLower(s))
		default:
			issues = append(issues, omsvalues.Issue{
				Path:    key,
				Code:    ErrCodeUnknownKey,
				Message: fmt.Sprintf("expected read or write, got %q", parts[2]),
			})
			continue
		}
		policy.SetRule(state, external, rule)
	}

	if err := policy.Validate(); err != nil {
		var verr *omsvalues.ValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		issues = append(issues, verr.Issues...)
	}
	if len(issues) > 0 {
		return nil, &omsvalues.ValidationError{Issues: issues}
	}
	return policy, nil
}

func toSources(v any) ([]omsvalues.Source, error) {
	switch list := v.(type) {
	case []any:
		out := make([]omsvalues.Source, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected list of strings, found %T", item)
			}
			out = append(out, omsvalues.Source(strings.ToLower(s)))
		}
		return out, nil
	case string:
		// Comma-separated form: "start,resources,defaults"
		var out []omsvalues.Source
		for _, s := range strings.Split(list, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, omsvalues.Source(strings.ToLower(s)))
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list of sources, got %T", v)
	}
}

// flattenMap recursively flattens nested maps to dot-separated keys.
// Lists are kept as leaves.
func flattenMap(prefix string, value any, result map[string]any) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			newPrefix := key
			if prefix != "" {
				newPrefix = prefix + "." + key
			}
			flattenMap(newPrefix, val, result)
		}
	case map[any]any:
		for key, val := range v {
			keyStr, ok := key.(string)
			if !ok {
				continue
			}
			newPrefix := keyStr
			if prefix != "" {
				newPrefix = prefix + "." + keyStr
			}
			flattenMap(newPrefix, val, result)
		}
	default:
		if prefix != "" {
			result[prefix] = value
		}
	}
}

func inferFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return ""
	}
}
