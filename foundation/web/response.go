package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dimfeld/httptreemux/v5"
)

// Respond marshals data as JSON and writes it to w with statusCode,
// recording the code in the request's Values for logging middleware.
func Respond(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error {
	v, err := GetValues(ctx)
	if err != nil {
		return err
	}
	v.StatusCode = statusCode

	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, err = w.Write(jsonData)
	return err
}

// RespondError writes message and fields as a JSON error payload with the
// given statusCode. It does not inspect any error itself; the caller picks
// the status code and message.
func RespondError(ctx context.Context, w http.ResponseWriter, statusCode int, message string, fields map[string]string) error {
	resp := struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields,omitempty"`
	}{
		Error:  message,
		Fields: fields,
	}
	return Respond(ctx, w, resp, statusCode)
}

// Decode unmarshals the request body into val. Callers that need struct
// validation tags enforced should follow this with business/validate.Check.
func Decode(r *http.Request, val any) error {
	if err := json.NewDecoder(r.Body).Decode(val); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}
	return nil
}

// Param returns the route parameter named key, or an empty string.
func Param(r *http.Request, key string) string {
	params := httptreemux.ContextParams(r.Context())
	return params[key]
}
