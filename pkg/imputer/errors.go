package imputer

import (
	"errors"
	"fmt"
)

// ParameterError reports a parameter value an executor cannot run with, or any other
// failure while producing one candidate. It only drops that candidate.
type ParameterError struct {
	Family string
	Param  string
	Reason string
	Err    error
}

func (e *ParameterError) Error() string {
	msg := fmt.Sprintf("parameter %q passed to %q is not supported", e.Param, e.Family)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParameterError) Unwrap() error {
	return e.Err
}

// EmptyWindowError reports a windowed-smoothing pass that could not produce values,
// for example because the series is shorter than the window.
type EmptyWindowError struct {
	Param  string
	Reason string
}

func (e *EmptyWindowError) Error() string {
	return fmt.Sprintf("empty window for %s=%s: %s", FamilyMovingWindow, e.Param, e.Reason)
}

// UnknownStrategyError reports a grid family that has no registered executor.
type UnknownStrategyError struct {
	Family string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("the %q imputer is not implemented or not registered", e.Family)
}

// IsSoft reports whether err only invalidates a single candidate. Fatal errors are
// registry mismatches; everything else an executor returns is soft.
func IsSoft(err error) bool {
	var unknown *UnknownStrategyError
	return err != nil && !errors.As(err, &unknown)
}

func parameterError(family, param, reason string) error {
	return &ParameterError{Family: family, Param: param, Reason: reason}
}

func wrapParameterError(family, param string, err error) error {
	var perr *ParameterError
	if errors.As(err, &perr) {
		return err
	}
	return &ParameterError{Family: family, Param: param, Err: err}
}
