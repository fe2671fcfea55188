package pipeline

import "fmt"

// StageError reports the stage that stopped a run.
type StageError struct {
	Run   string
	Stage string
	Op    string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("run %s: stage %s: %s: %v", e.Run, e.Stage, e.Op, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with the run and stage it happened in.
func NewStageError(run, stage, op string, err error) *StageError {
	return &StageError{Run: run, Stage: stage, Op: op, Err: err}
}
