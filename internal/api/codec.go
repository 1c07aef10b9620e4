package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/h0rv/counters/internal/domain"
)

// numberAPI decodes numbers as json.Number so counts keep integer precision.
var numberAPI = sonic.Config{UseNumber: true}.Froze()

// EncodeCounters encodes a counter list in the wire format.
func EncodeCounters(counters []domain.Counter) ([]byte, error) {
	if counters == nil {
		counters = []domain.Counter{}
	}
	return sonic.Marshal(counters)
}

// DecodeCounters parses a counter list from the wire format.
// Keys are normalized so "id", "ID", "counter_id" style variants of the three
// known fields all map onto domain.Counter. Unknown keys are ignored.
func DecodeCounters(data []byte) ([]domain.Counter, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: empty response body", ErrDecode)
	}

	var raw []map[string]interface{}
	if err := numberAPI.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	counters := make([]domain.Counter, 0, len(raw))
	for i, obj := range raw {
		c, err := decodeCounter(obj)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrDecode, i, err)
		}
		counters = append(counters, c)
	}
	return counters, nil
}

// decodeCounter maps a loosely keyed object onto a Counter. Synonyms of one
// field must agree, otherwise the object is rejected.
func decodeCounter(obj map[string]interface{}) (domain.Counter, error) {
	var c domain.Counter
	var hasID, hasTitle, hasCount bool

	for key, value := range obj {
		switch normalizeKey(key) {
		case "id", "counterid":
			s, ok := value.(string)
			if !ok {
				return c, fmt.Errorf("id must be a string, got %T", value)
			}
			if hasID && s != c.ID {
				return c, fmt.Errorf("conflicting ids %q and %q", c.ID, s)
			}
			c.ID, hasID = s, true
		case "title", "countertitle":
			s, ok := value.(string)
			if !ok {
				return c, fmt.Errorf("title must be a string, got %T", value)
			}
			if hasTitle && s != c.Title {
				return c, fmt.Errorf("conflicting titles %q and %q", c.Title, s)
			}
			c.Title, hasTitle = s, true
		case "count", "countercount":
			n, err := toInt(value)
			if err != nil {
				return c, err
			}
			if hasCount && n != c.Count {
				return c, fmt.Errorf("conflicting counts %d and %d", c.Count, n)
			}
			c.Count, hasCount = n, true
		}
	}

	if c.ID == "" {
		return c, fmt.Errorf("missing id")
	}
	if !hasCount {
		return c, fmt.Errorf("counter %s: missing count", c.ID)
	}
	if c.Count < 0 {
		return c, fmt.Errorf("counter %s: negative count %d", c.ID, c.Count)
	}
	return c, nil
}

// normalizeKey folds snake_case, kebab-case and camelCase keys to one form.
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "")
	return strings.ReplaceAll(key, "-", "")
}

func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("count must be an integer, got %s", v.String())
		}
		return int(n), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("count must be an integer, got %v", v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("count must be a number, got %T", value)
	}
}
