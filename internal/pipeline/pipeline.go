// Package pipeline decodes the standard {meta, data} response envelope
// and maps every failure, transport or business, into the shared error
// taxonomy. Every endpoint goes through the same Parse call.
package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/smallbiznis/valora-session/internal/domain"
)

type validatable interface {
	Validate() error
}

// Parse resolves a transport result into a typed payload.
//
// When callErr is nil the raw body is decoded as Envelope[T]; a known
// business code in meta fails the call even though the outer HTTP
// status was 2xx, a non-success status with a message becomes a custom
// business error carrying that message verbatim, and a success
// envelope without data is a protocol violation.
//
// When callErr is a server error its body is first decoded as an
// envelope so the server's own code and message win over generic
// status-code text; an absent or undecodable body falls back to
// mapping the HTTP status alone.
func Parse[T any](body []byte, callErr error) (T, error) {
	var zero T

	if callErr != nil {
		if infraErr, ok := domain.AsInfraError(callErr); ok && infraErr.Kind == domain.InfraServer {
			if businessErr := mapEnvelopeFailure(infraErr.Body); businessErr != nil {
				return zero, businessErr
			}
			if authErr := domain.MapStatusCode(infraErr.Status); authErr != nil {
				return zero, authErr
			}
		}
		return zero, callErr
	}

	var envelope domain.Envelope[T]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return zero, domain.NewDecodingError(err)
	}

	if authErr := domain.MapStatusCode(envelope.Meta.Code); authErr != nil {
		return zero, authErr
	}
	if envelope.Meta.Status != domain.StatusSuccess {
		if msg := strings.TrimSpace(envelope.Meta.Message); msg != "" {
			return zero, domain.NewCustomError(msg)
		}
		return zero, domain.NewAuthError(domain.AuthUnknown)
	}
	if envelope.Data == nil {
		return zero, domain.NewInvalidResponseError()
	}

	data := *envelope.Data
	if v, ok := any(data).(validatable); ok {
		if err := v.Validate(); err != nil {
			return zero, domain.NewDecodingError(err)
		}
	}
	return data, nil
}

// mapEnvelopeFailure extracts a business error from a raw error body.
// It returns nil when the body is empty, undecodable, or carries
// neither a mapped code nor a message.
func mapEnvelopeFailure(body []byte) error {
	if len(body) == 0 {
		return nil
	}
	var envelope domain.Envelope[json.RawMessage]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	if authErr := domain.MapStatusCode(envelope.Meta.Code); authErr != nil {
		return authErr
	}
	if msg := strings.TrimSpace(envelope.Meta.Message); msg != "" {
		return domain.NewCustomError(msg)
	}
	return nil
}
