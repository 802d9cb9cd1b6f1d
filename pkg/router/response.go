package router

import (
	"errors"

	"github.com/questx-lab/petquest/pkg/errorx"
)

// envelope wraps every answer. Code is zero on success. Errors that are not
// errorx errors are reported as errorx.Unknown so internals never leak.
type envelope struct {
	Code  errorx.Code `json:"code"`
	Error string      `json:"error,omitempty"`
	Data  any         `json:"data,omitempty"`
}

func toEnvelope(data any, err error) envelope {
	if err == nil {
		return envelope{Data: data}
	}

	var errx errorx.Error
	if !errors.As(err, &errx) {
		errx = errorx.Unknown
	}

	return envelope{Code: errx.Code, Error: errx.Message}
}
