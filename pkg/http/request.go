package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "barberbook/pkg/errors"
)

// DecodeJSON reads a single JSON document from the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperrors.InvalidInput("Request body is empty")
		case errors.As(err, &maxErr):
			return apperrors.InvalidInput("Request body too large")
		default:
			return apperrors.InvalidInput("Invalid request body")
		}
	}
	return nil
}
