package llmtool

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"intentional/internal/util/jsonutil"
)

var ErrInvalidJSON = errors.New("invalid json from LLM")

// MissingKeysError lists required object keys absent from a response.
type MissingKeysError struct {
	Keys []string
}

func (e *MissingKeysError) Error() string {
	return "missing required keys: " + strings.Join(e.Keys, ", ")
}

// DecodeObject extracts a JSON object from model text, checks that every
// required key is present and decodes it into out.
func DecodeObject(text string, out any, required ...string) error {
	raw := []byte(jsonutil.ExtractJSON(text))
	var fields map[string]json.RawMessage
	if err := jsonutil.UnmarshalFlex(raw, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	var missing []string
	for _, k := range required {
		v, ok := fields[k]
		if !ok || string(v) == "null" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &MissingKeysError{Keys: missing}
	}
	if err := jsonutil.UnmarshalFlex(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

// DecodeArray extracts a JSON array from model text and decodes it into out.
func DecodeArray(text string, out any) error {
	raw := []byte(jsonutil.ExtractJSON(text))
	var items []json.RawMessage
	if err := jsonutil.UnmarshalFlex(raw, &items); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := jsonutil.UnmarshalFlex(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}
