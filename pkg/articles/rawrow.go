package articles

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
)

// RawRow is one untyped row as returned by the remote store.
// Column order is preserved; numbers decode as json.Number.
type RawRow struct {
	keys   []string
	values map[string]any
}

// NewRawRow builds a row from alternating key/value pairs.
// It panics on an odd argument count or a non-string key.
func NewRawRow(kv ...any) RawRow {
	if len(kv)%2 != 0 {
		panic("articles: NewRawRow needs key/value pairs")
	}
	var r RawRow
	for i := 0; i < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1])
	}
	return r
}

// ParseRows decodes a remote snapshot body. Anything other than a JSON
// array of objects is a ShapeError.
func ParseRows(data []byte) ([]RawRow, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.NewShapeError(constants.ErrMsgNotArray, describeJSON(trimmed), nil)
	}
	var rows []RawRow
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		var shape *errors.ShapeError
		if errors.As(err, &shape) {
			return nil, shape
		}
		return nil, errors.NewShapeError(constants.ErrMsgNotArray, "malformed JSON", err)
	}
	return rows, nil
}

// Keys returns the column names in order.
func (r RawRow) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of columns.
func (r RawRow) Len() int {
	return len(r.keys)
}

// Get returns the raw value stored under key.
func (r RawRow) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether the column exists.
func (r RawRow) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Text returns the value under key rendered as a string; absent and null
// values render as "".
func (r RawRow) Text(key string) string {
	return textOf(r.values[key])
}

// Set stores a value, appending the column if it is new.
func (r *RawRow) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Delete removes a column.
func (r *RawRow) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i:i], r.keys[i+1:]...)
			break
		}
	}
}

// Clone returns an independent copy. Nested values are shared.
func (r RawRow) Clone() RawRow {
	out := RawRow{
		keys:   append([]string(nil), r.keys...),
		values: make(map[string]any, len(r.values)),
	}
	for k, v := range r.values {
		out.values[k] = v
	}
	return out
}

// Lookup returns the first non-empty value among the columns accepted for f,
// trying spellings in priority order.
func (r RawRow) Lookup(f Field) string {
	def := columnDefs[f]
	for _, spelling := range def.spellings {
		for _, k := range r.keys {
			if strings.EqualFold(k, spelling) {
				if v := strings.TrimSpace(r.Text(k)); v != "" {
					return v
				}
			}
		}
	}
	if def.contains != "" {
		for _, k := range r.keys {
			if strings.Contains(strings.ToLower(k), def.contains) {
				if v := strings.TrimSpace(r.Text(k)); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

// MarshalJSON writes the row as an object in column order.
func (r RawRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeMembers(&buf, r, nil, false); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keeping its member order. JSON null
// yields an empty row.
func (r *RawRow) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return errors.NewShapeError("JSON object", "malformed JSON", err)
	}
	if tok == nil {
		*r = RawRow{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.NewShapeError("JSON object", describeToken(tok), nil)
	}

	var row RawRow
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return errors.NewShapeError("JSON object", "malformed JSON", err)
		}
		key, _ := keyTok.(string)
		var value any
		if err := dec.Decode(&value); err != nil {
			return errors.NewShapeError("JSON value", "malformed JSON", err)
		}
		row.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return errors.NewShapeError("JSON object", "malformed JSON", err)
	}
	*r = row
	return nil
}

// writeMembers appends "key":value pairs for every column of r not in skip.
func writeMembers(buf *bytes.Buffer, r RawRow, skip map[string]bool, leadingComma bool) error {
	first := !leadingComma
	for _, k := range r.keys {
		if skip[k] {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(k)
		if err != nil {
			return err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return errors.WrapParse("json", "", fmt.Errorf("column %q: %w", k, err))
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	return nil
}

// textOf renders a decoded JSON value the way a spreadsheet cell reads.
func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func describeJSON(b []byte) string {
	if len(b) == 0 {
		return "empty body"
	}
	switch b[0] {
	case '{':
		return "object"
	case '"':
		return "string"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	default:
		return "scalar"
	}
}

func describeToken(tok json.Token) string {
	switch t := tok.(type) {
	case json.Delim:
		if t == '[' {
			return "array"
		}
		return string(t)
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", tok)
	}
}
