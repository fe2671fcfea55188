// Package pipeline runs the ETL stages in order under one run id.
package pipeline

import "context"

// Stage is one step of a run. Run returns the files it produced.
type Stage interface {
	Name() string
	Run(ctx context.Context) ([]string, error)
}

// StageFunc adapts a function to a Stage.
type StageFunc func(ctx context.Context) ([]string, error)

type funcStage struct {
	name string
	fn   StageFunc
}

// NewStage names fn as a stage.
func NewStage(name string, fn StageFunc) Stage {
	return &funcStage{name: name, fn: fn}
}

func (s *funcStage) Name() string { return s.name }
func (s *funcStage) Run(ctx context.Context) ([]string, error) {
	return s.fn(ctx)
}
