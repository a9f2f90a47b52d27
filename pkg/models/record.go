// Package models contains the row types shared across the report pipeline.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrMissingColumn is returned when a warehouse row lacks a column a report requires.
var ErrMissingColumn = errors.New("required column missing")

// Record is one warehouse result row. Column order follows the result set
// and is never changed by Set; new keys are appended.
type Record struct {
	columns []string
	values  map[string]any
}

// NewRecord returns an empty Record ready for use.
func NewRecord() Record {
	return Record{values: make(map[string]any)}
}

// Set assigns a value, appending key to the column list if it is new.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.columns = append(r.columns, key)
	}
	r.values[key] = value
}

// Get returns the raw value stored under key.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is a column of the record, even if its value is null.
func (r Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Columns returns a copy of the column names in result order.
func (r Record) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of columns.
func (r Record) Len() int { return len(r.columns) }

// Clone returns a deep copy of the column list and a shallow copy of the values.
func (r Record) Clone() Record {
	c := Record{
		columns: r.Columns(),
		values:  make(map[string]any, len(r.values)),
	}
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// Display renders the value for key as text. Missing and null values are "".
func (r Record) Display(key string) string {
	return FormatValue(r.values[key])
}

// String returns the trimmed display value for key.
func (r Record) String(key string) string {
	return strings.TrimSpace(r.Display(key))
}

// Int coerces the value for key to an int. Unparseable values yield 0.
func (r Record) Int(key string) int {
	switch v := r.values[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(i)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

// Float coerces the value for key to a float64. Unparseable values yield 0.
func (r Record) Float(key string) float64 {
	switch v := r.values[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Bool coerces the value for key to a bool. The bq CLI serializes booleans as
// the strings "true" and "false", so strings are parsed rather than tested for
// emptiness.
func (r Record) Bool(key string) bool {
	switch v := r.values[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false
		}
		return b
	case nil:
		return false
	default:
		return r.Float(key) != 0
	}
}

// Require returns ErrMissingColumn naming the first key that is not a column.
func (r Record) Require(keys ...string) error {
	for _, k := range keys {
		if !r.Has(k) {
			return fmt.Errorf("%w: %s", ErrMissingColumn, k)
		}
	}
	return nil
}

// FormatValue renders a scalar warehouse value as display text.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case []byte:
		return string(t)
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// UnmarshalJSON decodes a JSON object while keeping key order. Nested
// objects and arrays are kept as their raw JSON text.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decode record: expected object, got %v", tok)
	}

	*r = NewRecord()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode record key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decode record: non-string key %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode record value %q: %w", key, err)
		}
		r.Set(key, scalarFromJSON(raw))
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// MarshalJSON encodes the record as an object in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func scalarFromJSON(raw json.RawMessage) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err == nil {
			return b
		}
	case 'n':
		return nil
	case '{', '[':
		return string(trimmed)
	default:
		return json.Number(string(trimmed))
	}
	return string(trimmed)
}
