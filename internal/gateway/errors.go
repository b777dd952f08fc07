package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vadimbarashkov/url-shortener-client/internal/entity"
)

// fieldErrorOrder is the priority in which backend field errors are surfaced.
// The backend reports duck-typed error shapes; this is the single place that
// maps them onto the typed taxonomy.
var fieldErrorOrder = []string{"custom_alias", "original_url", "username", "password", "non_field_errors", "detail", "error"}

// classifyResponse maps a non-success backend response to a taxonomy error.
// The response body is consumed.
func classifyResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return entity.ErrSessionInvalid
	case resp.StatusCode == http.StatusNotFound:
		return entity.ErrLinkNotFound
	case resp.StatusCode >= 500:
		return &entity.TransportError{Err: fmt.Errorf("server returned %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		if verr := decodeFieldErrors(body); verr != nil {
			return verr
		}
		return &entity.ValidationError{Messages: []string{fmt.Sprintf("request rejected with status %d", resp.StatusCode)}}
	default:
		return &entity.TransportError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
}

// decodeFieldErrors extracts per-field error messages from a 4xx body.
// Values may be a string or an array of strings depending on the endpoint.
func decodeFieldErrors(body []byte) *entity.ValidationError {
	var raw map[string]json.RawMessage

	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}

	for _, field := range fieldErrorOrder {
		msg, ok := raw[field]
		if !ok {
			continue
		}

		messages := decodeMessages(msg)
		if len(messages) == 0 {
			continue
		}

		verr := &entity.ValidationError{Field: field, Messages: messages}
		if field == "non_field_errors" || field == "detail" || field == "error" {
			verr.Field = ""
		}

		return verr
	}

	return nil
}

func decodeMessages(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}

	return nil
}
