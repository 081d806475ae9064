package check

import (
	"fmt"

	"perltoolbox/internal/config"
)

// Pipeline selects a checker.
type Pipeline uint8

const (
	PipelineLint Pipeline = iota
	PipelineSyntax

	pipelineCount
)

// Pipelines lists every pipeline in publish order.
var Pipelines = []Pipeline{PipelineLint, PipelineSyntax}

func (p Pipeline) String() string {
	switch p {
	case PipelineLint:
		return "lint"
	case PipelineSyntax:
		return "syntax"
	default:
		return fmt.Sprintf("pipeline(%d)", uint8(p))
	}
}

// ParsePipeline accepts "lint" or "syntax".
func ParsePipeline(name string) (Pipeline, error) {
	switch name {
	case "lint":
		return PipelineLint, nil
	case "syntax":
		return PipelineSyntax, nil
	}
	return 0, fmt.Errorf("unknown pipeline %q", name)
}

// Enabled reports whether settings turn the pipeline on.
func (p Pipeline) Enabled(s config.Settings) bool {
	switch p {
	case PipelineLint:
		return s.Lint.Enabled
	case PipelineSyntax:
		return s.Syntax.Enabled
	}
	return false
}

// Exec returns the configured executable for p.
func (p Pipeline) Exec(s config.Settings) string {
	if p == PipelineSyntax {
		return s.Syntax.Exec
	}
	return s.Lint.Exec
}
