package pipeline

import "fmt"

// StageError classifies a stage failure. Fatal errors abort the run; the rest
// are degradations the dispatcher continues past with a fallback already
// applied by the stage itself.
type StageError struct {
	Stage string
	Err   error
	Fatal bool
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func fatalError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err, Fatal: true}
}
