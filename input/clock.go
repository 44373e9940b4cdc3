package input

import "time"

var processStart = time.Now()

// processMonotonic is the process-monotonic fallback clock handed to every
// timestamp.Engine built by this package.
func processMonotonic() int64 { return time.Since(processStart).Nanoseconds() }
