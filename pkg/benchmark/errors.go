package benchmark

import (
	"errors"
	"fmt"

	"github.com/gocrane/imputebench/pkg/imputer"
)

var (
	// ErrNoCandidates is returned by a trial in which every candidate failed.
	ErrNoCandidates = errors.New("no candidate produced a score")
	// ErrEmptySummary is returned when no trial produced an outcome to rank.
	ErrEmptySummary = errors.New("summary is empty")
)

// UnresolvedError reports a scored position the candidate left missing or never covered.
type UnresolvedError struct {
	Position int
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("position %d is not imputed", e.Position)
}

// ApplyMismatchError reports that the winning descriptor has no executor to apply it.
type ApplyMismatchError struct {
	Descriptor imputer.Descriptor
}

func (e *ApplyMismatchError) Error() string {
	return fmt.Sprintf("the best method %q has no registered imputer", e.Descriptor)
}
