package viewer

import "fmt"

// LoadError reports a failure while fetching or parsing the engine module
// or the asset itself. User-recoverable via Retry.
type LoadError struct {
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("asset load failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("asset load failed: %s", e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// RenderError reports a failure from the rendering context after the asset
// was acquired (mount failure, context loss). User-recoverable via Retry.
type RenderError struct {
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render failure: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("render failure: %s", e.Reason)
}

func (e *RenderError) Unwrap() error { return e.Err }
