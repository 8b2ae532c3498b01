// Package env reads the few settings needed before config.Load runs.
package env

import (
	"os"
	"strings"
)

// Prefix namespaces every service variable.
const Prefix = "RESELLERHUB_"

// Get returns the trimmed value of RESELLERHUB_<key>, then of the bare key,
// or fallback when neither is set.
func Get(key, fallback string) string {
	for _, name := range []string{Prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}
