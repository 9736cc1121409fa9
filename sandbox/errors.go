//go:build linux

package sandbox

import "fmt"

// BringupError names the bring-up stage that failed, so the Supervisor can
// report which part of the Supervisor/Init choreography broke without the
// caller having to parse an error string.
type BringupError struct {
	Stage string
	Err   error
}

func (e *BringupError) Error() string {
	return fmt.Sprintf("sandbox: %s: %v", e.Stage, e.Err)
}

func (e *BringupError) Unwrap() error {
	return e.Err
}

func stageError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &BringupError{Stage: stage, Err: err}
}
