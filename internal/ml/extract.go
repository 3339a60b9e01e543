package ml

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/franckalain/winelens/internal/models"
)

// ErrNoJSONObject is returned when no JSON value could be found in a reply
var ErrNoJSONObject = errors.New("no JSON object in model reply")

// ExtractJSONObject returns the JSON value embedded in free text, untouched.
// The candidate runs from the first '{' to the last '}' so surrounding prose
// and code fences are ignored; without such a span the whole text is used.
func ExtractJSONObject(text string) (json.RawMessage, error) {
	candidate := text
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			candidate = text[start : end+1]
		}
	}

	raw := bytes.TrimSpace([]byte(candidate))
	if !json.Valid(raw) {
		return nil, ErrNoJSONObject
	}
	return json.RawMessage(raw), nil
}

// DecodeWineRecord reads whatever WineRecord fields it can from raw. Fields
// of an unexpected type are left zero. It returns nil when raw is not JSON.
func DecodeWineRecord(raw json.RawMessage) *models.WineRecord {
	var record models.WineRecord
	var typeErr *json.UnmarshalTypeError
	if err := json.Unmarshal(raw, &record); err != nil && !errors.As(err, &typeErr) {
		return nil
	}
	return &record
}
