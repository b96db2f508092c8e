package pipeline

import (
	"context"
	"errors"
	"fmt"

	"intentional/internal/llm"
	llmclient "intentional/internal/llm/client"
	"intentional/internal/types"
)

// StagePipeline names failures that belong to the run rather than one stage,
// such as the overall deadline expiring between batches.
const StagePipeline types.Stage = "pipeline"

// ValidationError rejects a submission before any generation call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission: %s %s", e.Field, e.Reason)
}

// ParseError reports generation output that does not satisfy a stage's
// contract. It is never retried.
type ParseError struct {
	Stage  types.Stage
	Reason string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: unparsable output: %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: unparsable output: %s", e.Stage, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PipelineError is the failure of one stage, which fails the whole run.
type PipelineError struct {
	Stage types.Stage
	Cause error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Cause)
}

func (e *PipelineError) Unwrap() error { return e.Cause }

// Retryable reports whether submitting the same input again may succeed:
// transport exhaustion and deadlines are retryable, contract violations
// and permanent provider errors are not.
func (e *PipelineError) Retryable() bool {
	var parseErr *ParseError
	switch {
	case errors.As(e.Cause, &parseErr):
		return false
	case llmclient.IsPermanent(e.Cause):
		return false
	case errors.Is(e.Cause, context.Canceled):
		return false
	}
	var exhausted *llm.RetryExhaustedError
	return errors.As(e.Cause, &exhausted) || errors.Is(e.Cause, context.DeadlineExceeded)
}

func stageError(stage types.Stage, err error) error {
	if err == nil {
		return nil
	}
	var pErr *PipelineError
	if errors.As(err, &pErr) {
		return err
	}
	return &PipelineError{Stage: stage, Cause: err}
}
