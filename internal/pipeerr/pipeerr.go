// Package pipeerr holds the single error type surfaced by the clip pipeline.
package pipeerr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	InvalidConfiguration  Kind = "invalid_configuration"
	InvalidInput          Kind = "invalid_input"
	AcquisitionFailed     Kind = "acquisition_failed"
	TranscriptUnavailable Kind = "transcript_unavailable"
	EmptyTranscript       Kind = "empty_transcript"
	InvalidDuration       Kind = "invalid_duration"
	NoCandidates          Kind = "no_candidates"
	NoHighScoringSegments Kind = "no_high_scoring_segments"
	RenderFailed          Kind = "render_failed"
)

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies err under kind unless it already carries a Kind.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return New(kind, err)
}

// KindOf returns the Kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
