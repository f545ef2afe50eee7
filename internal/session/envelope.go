package session

import (
	"encoding/json"

	perrors "jobboard-portal/internal/common/errors"
	gateway "jobboard-portal/internal/common/http"
)

// envelopeError maps a transport error or a rejected envelope to a StandardError.
func envelopeError(env *gateway.Envelope, err error, fallback string) error {
	if err != nil {
		return perrors.Normalize(err)
	}
	if env == nil {
		return perrors.NewShapeMismatchError("envelope", "no envelope returned")
	}
	if !env.Success {
		return perrors.NewBackendRejectedError(env.Message, fallback)
	}
	return nil
}

// mutationError is envelopeError for user-initiated writes: a transport failure
// carries the operation's fallback message since there is no backend message.
func mutationError(env *gateway.Envelope, err error, fallback string) error {
	if err != nil {
		return perrors.WithMessage(perrors.Normalize(err), fallback)
	}
	return envelopeError(env, nil, fallback)
}

// dataError additionally requires a data payload.
func dataError(env *gateway.Envelope, err error, operation, fallback string) error {
	if err := envelopeError(env, err, fallback); err != nil {
		return err
	}
	if !env.HasData() {
		return perrors.NewShapeMismatchError(operation, "envelope has no data")
	}
	return nil
}

func decodeData(env *gateway.Envelope, err error, operation, fallback string, out interface{}) error {
	if err := dataError(env, err, operation, fallback); err != nil {
		return err
	}
	if err := env.Decode(out); err != nil {
		return perrors.NewShapeMismatchError(operation, err.Error())
	}
	return nil
}

func decodeRaw(raw json.RawMessage, out interface{}) error {
	return json.Unmarshal(raw, out)
}
