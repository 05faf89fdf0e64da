package env

import (
	"os"
	"strings"
)

// Prefix namespaces process-level toggles that are read before config loads.
const Prefix = "CHOKISTORE_"

// Get returns the prefixed variable, then the bare one, then the fallback.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(Prefix + key)); val != "" {
		return val
	}
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
