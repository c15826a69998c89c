package hasura

import (
	"encoding/json"
	"errors"
	"fmt"

	graphql "github.com/hasura/go-graphql-client"
)

// fallbackMessage is used when upstream gives no usable error text
const fallbackMessage = "Hasura error"

// NetworkError is a transport failure talking to the endpoint
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError is a GraphQL-level or non-2xx rejection. Message holds the
// first error reported by upstream.
type UpstreamError struct {
	Op         string
	Message    string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	return e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// FirstMessage extracts the first upstream error message from err, falling
// back to "Hasura error".
func FirstMessage(err error) string {
	var upstream *UpstreamError
	if errors.As(err, &upstream) && upstream.Message != "" {
		return upstream.Message
	}

	var gqlErrs graphql.Errors
	if errors.As(err, &gqlErrs) && len(gqlErrs) > 0 && gqlErrs[0].Message != "" {
		return gqlErrs[0].Message
	}

	return fallbackMessage
}

// classify turns a client error into NetworkError or UpstreamError using
// what the transport saw for this call.
func classify(op string, err error, p *callTrace) error {
	if p != nil && p.transportErr != nil {
		return &NetworkError{Op: op, Err: p.transportErr}
	}

	status := 0
	if p != nil {
		status = p.status
	}

	// Non-2xx errors from the client only carry the status text, so the
	// message comes from the body the transport kept.
	message := FirstMessage(err)
	if status != 0 && (status < 200 || status > 299) {
		message = fallbackMessage
		if m := bodyMessage(p.body); m != "" {
			message = m
		}
	}

	return &UpstreamError{
		Op:         op,
		Message:    message,
		StatusCode: status,
		Err:        err,
	}
}

// bodyMessage returns the first entry of a GraphQL errors body, or ""
func bodyMessage(body []byte) string {
	var payload struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Errors) == 0 {
		return ""
	}
	return payload.Errors[0].Message
}
