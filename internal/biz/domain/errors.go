package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL     = errors.New("invalid or blocked url")
	ErrExtraction     = errors.New("content extraction failed")
	ErrSummarization  = errors.New("summarization failed")
	ErrQuestion       = errors.New("question answering failed")
	ErrStaleCache     = errors.New("summary expired or missing")
	ErrNothingPending = errors.New("no content to summarize")
)

// Stage names a step of a remote pipeline
type Stage string

const (
	StageExtract   Stage = "extract"
	StageSummarize Stage = "summarize"
	StageQuestion  Stage = "question"
)

// StageError ties a failure to the pipeline stage it happened in
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with the stage it failed in
func NewStageError(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage of err, or "" if it carries none
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
