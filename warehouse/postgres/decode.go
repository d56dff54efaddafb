package postgres

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/pgvector/pgvector-go"
)

// decodeValue maps scanned lib/pq values onto JSON-ready ones. Numerics and
// uuids stay exact strings, json columns stay raw json, and pgvector columns
// (no known type name) become float arrays.
func decodeValue(typeName string, v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		switch typeName {
		case "BYTEA":
			return append([]byte(nil), val...)
		case "JSON", "JSONB":
			if json.Valid(val) {
				return json.RawMessage(append([]byte(nil), val...))
			}
		case "":
			if vec, ok := decodeVector(val); ok {
				return vec
			}
		}
		return string(val)
	case time.Time:
		if typeName == "DATE" {
			return val.Format(time.DateOnly)
		}
		return val
	default:
		return val
	}
}

func decodeVector(bs []byte) ([]float32, bool) {
	trimmed := bytes.TrimSpace(bs)
	if len(trimmed) < 2 || trimmed[0] != '[' || trimmed[len(trimmed)-1] != ']' {
		return nil, false
	}

	var vec pgvector.Vector
	if err := vec.Scan(trimmed); err != nil {
		return nil, false
	}

	return vec.Slice(), true
}
