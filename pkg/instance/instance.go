package instance

import (
	"os"

	"github.com/chokistore/backend/pkg/env"
)

// GetID names this process for lock tokens and log lines. INSTANCE_ID wins,
// then the host name, then a fixed fallback.
func GetID() string {
	if id := env.Get("INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "choki-0"
}
