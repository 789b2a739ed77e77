package core

import "partpulse/pkg/domain"

// decodeChangePayload decodes a change payload into T. It reports false when
// the payload is empty or does not decode, which rules treat as "no state".
func decodeChangePayload[T any](payload domain.ChangePayload) (T, bool) {
	value, ok, err := domain.DecodeChangePayload[T](payload)
	if err != nil {
		var zero T
		return zero, false
	}
	return value, ok
}
