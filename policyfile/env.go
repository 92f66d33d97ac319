package policyfile

import (
	"strings"
)

// envKeys filters environ by prefix and normalizes the remaining keys:
// SIMULATION__EXTERNAL__WRITE → simulation.external.write. Values stay
// strings; read orders use the comma-separated form.
func envKeys(prefix string, environ []string) map[string]any {
	result := make(map[string]any)

	for _, env := range environ {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := parts[0]
		value := parts[1]

		if !strings.HasPrefix(strings.ToUpper(key), strings.ToUpper(prefix)) {
			continue
		}
		key = key[len(prefix):]
		if key == "" {
			continue
		}

		result[normalizeKey(key)] = value
	}

	return result
}

// normalizeKey converts FOO__BAR to foo.bar.
func normalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, "__", "."))
}
