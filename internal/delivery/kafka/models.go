package kafka

import "github.com/azizikri/claims-management/internal/domain"

const SchemaVersion = 1

const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

// RequestPayload carries exactly one of Claim, User or Policy, matching the
// topic it was produced to.
type RequestPayload struct {
	SchemaVersion int            `json:"schema_version"`
	CorrelationID string         `json:"correlation_id"`
	ReplyTo       string         `json:"reply_to"`
	Claim         *domain.Claim  `json:"claim,omitempty"`
	User          *domain.User   `json:"user,omitempty"`
	Policy        *domain.Policy `json:"policy,omitempty"`
}

type ResponsePayload struct {
	SchemaVersion int            `json:"schema_version"`
	CorrelationID string         `json:"correlation_id"`
	Status        string         `json:"status"`
	ErrorCode     string         `json:"error_code,omitempty"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	Claim         *domain.Claim  `json:"claim,omitempty"`
	User          *domain.User   `json:"user,omitempty"`
	Policy        *domain.Policy `json:"policy,omitempty"`
}
