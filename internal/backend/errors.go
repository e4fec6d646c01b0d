package backend

import (
	"errors"
	"fmt"
	"time"
)

// ErrStopped is returned from Start when Stop is called while the
// supervisor is still probing.
var ErrStopped = errors.New("backend supervisor stopped")

// SpawnError reports that the backend worker process could not be created.
// Fatal to host startup.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn backend process: %v", e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// TimeoutError reports that the probe attempt budget was exhausted without
// the backend ever answering. Fatal to host startup.
type TimeoutError struct {
	Attempts int
	Elapsed  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("backend did not become healthy after %d probe attempts (%s)", e.Attempts, e.Elapsed.Truncate(time.Millisecond))
}
