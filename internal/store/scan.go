package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Scanners that map NULL to nil fields.

type strPtr struct{ dst **string }

func (s strPtr) Scan(v any) error {
	var ns sql.NullString
	if err := ns.Scan(v); err != nil {
		return err
	}
	*s.dst = nil
	if ns.Valid {
		x := ns.String
		*s.dst = &x
	}
	return nil
}

type intPtr struct{ dst **int64 }

func (s intPtr) Scan(v any) error {
	var n sql.NullInt64
	if err := n.Scan(v); err != nil {
		return err
	}
	*s.dst = nil
	if n.Valid {
		x := n.Int64
		*s.dst = &x
	}
	return nil
}

type floatPtr struct{ dst **float64 }

func (s floatPtr) Scan(v any) error {
	var n sql.NullFloat64
	if err := n.Scan(v); err != nil {
		return err
	}
	*s.dst = nil
	if n.Valid {
		x := n.Float64
		*s.dst = &x
	}
	return nil
}

type jsonCol[T any] struct{ dst *T }

func jsonInto[T any](dst *T) jsonCol[T] { return jsonCol[T]{dst: dst} }

func (s jsonCol[T]) Scan(v any) error {
	var zero T
	*s.dst = zero
	data, ok := textBytes(v)
	if !ok {
		return nil
	}
	return json.Unmarshal(data, s.dst)
}

type rawCol struct{ dst *json.RawMessage }

func (s rawCol) Scan(v any) error {
	*s.dst = nil
	if data, ok := textBytes(v); ok {
		*s.dst = append(json.RawMessage(nil), data...)
	}
	return nil
}

func textBytes(v any) ([]byte, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case []byte:
		return x, len(x) > 0
	case string:
		return []byte(x), x != ""
	}
	return nil, false
}

const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z"

type timeCol struct{ dst *time.Time }

func (s timeCol) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		*s.dst = x.UTC()
		return nil
	case string:
		return s.parse(x)
	case []byte:
		return s.parse(string(x))
	case nil:
		*s.dst = time.Time{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into time", v)
}

func (s timeCol) parse(str string) error {
	for _, layout := range []string{sqliteTimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, str); err == nil {
			*s.dst = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot parse time %q", str)
}
