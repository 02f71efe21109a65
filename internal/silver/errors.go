package silver

import (
	"errors"

	"flight-silver/internal/frame"
	"flight-silver/internal/metrics"
	"flight-silver/internal/storage"
)

// Every failure returned by Transform wraps exactly one of these.
var (
	ErrSchema       = frame.ErrSchema
	ErrIO           = storage.ErrIO
	ErrTypeCoercion = frame.ErrTypeCoercion
)

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrSchema):
		return metrics.ResultSchemaErr
	case errors.Is(err, ErrIO):
		return metrics.ResultIOErr
	case errors.Is(err, ErrTypeCoercion):
		return metrics.ResultTypeErr
	default:
		return metrics.ResultOtherError
	}
}
