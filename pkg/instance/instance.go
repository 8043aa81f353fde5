package instance

import (
	"os"

	"github.com/rhoodstudio/studio-backend/pkg/env"
)

// ID names this process in logs and lock values. RHOOD_INSTANCE_ID wins, then
// the dyno name, then the hostname.
func ID() string {
	if id := env.First("RHOOD_INSTANCE_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
