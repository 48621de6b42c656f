package wizard

import (
	"encoding/json"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// validate is shared across all response parsers; it caches struct metadata.
var validate = validator.New()

// flexString accepts a JSON string or number. Models frequently emit
// numeric KPI targets and IDs where the schema asks for a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexString(strconv.FormatBool(b))
		return nil
	}
	// Unrecognized shape: leave empty so field validation drops the entry.
	*f = ""
	return nil
}

func (f flexString) String() string { return string(f) }

// flexStrings accepts a JSON array of strings/numbers or a single scalar.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	var items []flexString
	if err := json.Unmarshal(data, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, it := range items {
			if it != "" {
				out = append(out, string(it))
			}
		}
		*f = out
		return nil
	}
	var single flexString
	if err := json.Unmarshal(data, &single); err == nil && single != "" {
		*f = []string{string(single)}
		return nil
	}
	*f = nil
	return nil
}
