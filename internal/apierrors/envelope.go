// Copyright 2026 Greenleaf Labs
//
// SPDX-License-Identifier: AGPL-3.0-only

package apierrors

// Envelope is the typed response wrapper every HTTP operation in §6 returns:
// {success, data?, error?}. The HTTP routing layer itself is out of scope,
// but handlers built on this module should return an Envelope so the
// contract is uniform regardless of which router binds it.
type Envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *EnvelopeError `json:"error,omitempty"`
}

// EnvelopeError is the JSON-serializable shape of a ServiceError.
type EnvelopeError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// OK wraps a successful result.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail wraps a ServiceError (or any error, best-effort) into an Envelope.
// Conflict errors report Success=true, per §7 "last-write-wins, no error".
func Fail(err error) Envelope {
	se, ok := As(err)
	if !ok {
		se = &ServiceError{Kind: Internal, Message: err.Error()}
	}
	return Envelope{
		Success: se.Kind == Conflict,
		Error: &EnvelopeError{
			Kind:    se.Kind.String(),
			Message: se.Message,
			Field:   se.Field,
		},
	}
}

// HTTPStatus returns the status code an HTTP boundary should use for this
// envelope. Successful envelopes always map to 200.
func (e Envelope) HTTPStatus() int {
	if e.Success || e.Error == nil {
		return 200
	}
	for k, s := range httpStatus {
		if k.String() == e.Error.Kind {
			return s
		}
	}
	return 500
}
