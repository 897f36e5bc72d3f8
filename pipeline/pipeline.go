// Package pipeline provides the sequential stage pipeline that drives one
// export run.
package pipeline

import (
	"context"
	"fmt"
)

// Stage is a single unit of work in an export pipeline. Stages only read
// the manifest and append generated files to the context; they never write
// to disk themselves.
type Stage interface {
	Name() string
	Execute(ctx context.Context, ec *ExportContext) error
}

// Pipeline executes a sequence of stages in order.
type Pipeline struct {
	stages []Stage
}

// New creates a Pipeline from the given stages.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run executes each stage sequentially. It stops on the first error so a
// failed export never yields partially-correct output.
func (p *Pipeline) Run(ctx context.Context, ec *ExportContext) error {
	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline cancelled before stage %s: %w", s.Name(), err)
		}
		ec.Logger.Debug("running stage: " + s.Name())
		if err := s.Execute(ctx, ec); err != nil {
			return fmt.Errorf("stage %s: %w", s.Name(), err)
		}
	}
	return nil
}
