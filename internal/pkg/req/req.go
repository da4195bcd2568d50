/*
Package req provides helper functions for HTTP request parsing and data binding.

It encapsulates the logic for parsing JSON request bodies with strict decoding,
mapping parse failures to application error codes.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"beacon/internal/pkg/errs"
)

// MaxJSONBodySize defines the maximum allowed size (10 MB) for a JSON request
// body. Base64-encoded avatar payloads are the largest expected bodies.
const MaxJSONBodySize int64 = 10 << 20 // 10 MB

// BindJSON attempts to bind the JSON data from the HTTP request body to the
// destination struct dst. The body is capped at MaxJSONBodySize.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}

		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
