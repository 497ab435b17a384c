// Package lifecycle holds shared constants for process start/stop handling.
package lifecycle

import "time"

// DefaultTimeout bounds graceful startup and shutdown operations
// (HTTP drain, database ping, publisher close).
const DefaultTimeout = 10 * time.Second
