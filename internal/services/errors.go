package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration    = errors.New("configuration error")
	ErrUnparsable       = errors.New("unparsable name")
	ErrMetadataNotFound = errors.New("metadata not found")
	ErrIO               = errors.New("io failure")
	ErrProvider         = errors.New("metadata provider error")
	ErrTransient        = errors.New("transient failure")
)

// Kind names the error taxonomy reported for each sorted file.
type Kind string

const (
	KindNone             Kind = ""
	KindConfig           Kind = "config"
	KindUnparsable       Kind = "unparsable_name"
	KindMetadataNotFound Kind = "metadata_not_found"
	KindIO               Kind = "io_failure"
	KindProvider         Kind = "provider_error"
	KindCanceled         Kind = "canceled"
	KindInternal         Kind = "internal"
)

// Outcome is the terminal state of a single file's pipeline.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error to its taxonomy kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, ErrConfiguration):
		return KindConfig
	case errors.Is(err, ErrUnparsable):
		return KindUnparsable
	case errors.Is(err, ErrMetadataNotFound):
		return KindMetadataNotFound
	case errors.Is(err, ErrIO):
		return KindIO
	case errors.Is(err, ErrProvider), errors.Is(err, ErrTransient):
		return KindProvider
	default:
		return KindInternal
	}
}

// OutcomeFor maps a per-file error to the terminal state the sorter records.
// Unparsable names and missing metadata are recoverable skips; everything
// else is a failure.
func OutcomeFor(err error) Outcome {
	switch Classify(err) {
	case KindNone:
		return OutcomeSuccess
	case KindUnparsable, KindMetadataNotFound:
		return OutcomeSkipped
	default:
		return OutcomeFailed
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "sort failure"
	}
	return strings.Join(parts, ": ")
}
