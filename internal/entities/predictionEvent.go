package entities

import (
	"time"

	"github.com/google/uuid"
)

type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeValidationError Outcome = "validation_error"
	OutcomeFailure         Outcome = "failure"
)

// PredictionEvent is published once per submission that reached the use case.
type PredictionEvent struct {
	RequestID  uuid.UUID `json:"request_id"`
	Domain     Domain    `json:"domain"`
	Outcome    Outcome   `json:"outcome"`
	Prediction *float64  `json:"prediction,omitempty"`
	Message    string    `json:"message,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// SubmissionMessage is a form submission delivered over the broker instead of HTTP.
type SubmissionMessage struct {
	RequestID uuid.UUID         `json:"request_id"`
	Domain    string            `json:"domain"`
	Fields    map[string]string `json:"fields"`
}
