// internal/app/system/formutil/formutil.go
//
// Package formutil decodes JSON request bodies with a size cap.
package formutil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/limits"
)

var ErrBodyTooLarge = errors.New("request body too large")

// DecodeJSON reads the request body into dst. The body is capped at
// limits.MaxJSONBodySize; trailing garbage after the JSON value is an
// error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return ErrBodyTooLarge
		}
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
