package entities

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const FallbackMessage = "Failed to get prediction. Please check if the prediction service is running."

var ErrSubmissionPending = errors.New("a prediction request is already in flight")

// ValidationError reports the first field that failed to parse.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	name := HumanizeField(e.Field)
	switch e.Reason {
	case "":
		return fmt.Sprintf("Please enter a valid number for %s", name)
	case ReasonEmptyText:
		return fmt.Sprintf("Please enter a value for %s", name)
	default:
		return fmt.Sprintf("Please enter a valid number for %s (%s)", name, e.Reason)
	}
}

const ReasonEmptyText = "empty"

type TransportError struct {
	StatusCode int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Server error: %d", e.StatusCode)
}

type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "decode prediction response"
	}
	return "decode prediction response: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

func HumanizeField(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

// UserMessage turns any submission error into the single string shown on the page.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		validationErr *ValidationError
		transportErr  *TransportError
		networkErr    *NetworkError
	)

	switch {
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.As(err, &transportErr):
		return transportErr.Error()
	case errors.As(err, &networkErr):
		if msg := networkErr.Error(); msg != "" {
			return msg
		}
		return FallbackMessage
	case errors.Is(err, ErrSubmissionPending):
		return "A prediction is already in progress. Please wait for it to finish."
	default:
		return FallbackMessage
	}
}
