package pinlogo

import (
	"bytes"
	"encoding/json"
)

// Style is the theme entry of a single logo.
type Style struct {
	Background string `json:"background"`
	Icon       string `json:"icon"`
}

// Theme maps logo ids to their pin style, preserving insertion order.
// Theme is a value: With returns an extended copy and leaves the receiver untouched.
type Theme struct {
	keys   []string
	styles map[string]Style
}

// With returns a theme holding every entry of t plus the given one.
// Setting an existing id replaces its style but keeps its position.
func (t Theme) With(id string, s Style) Theme {
	next := Theme{
		keys:   make([]string, len(t.keys), len(t.keys)+1),
		styles: make(map[string]Style, len(t.styles)+1),
	}
	copy(next.keys, t.keys)
	for k, v := range t.styles {
		next.styles[k] = v
	}
	if _, ok := next.styles[id]; !ok {
		next.keys = append(next.keys, id)
	}
	next.styles[id] = s

	return next
}

// Get returns the style of a logo.
func (t Theme) Get(id string) (Style, bool) {
	s, ok := t.styles[id]
	return s, ok
}

// Keys returns the logo ids in insertion order.
func (t Theme) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Len returns the number of entries.
func (t Theme) Len() int {
	return len(t.keys)
}

// MarshalJSON encodes the theme as a JSON object whose keys follow the insertion order.
func (t Theme) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(t.styles[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}
