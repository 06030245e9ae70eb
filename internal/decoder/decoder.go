// Package decoder parses raw queue message bodies into RawRecords.
package decoder

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/loginflow-systems/login-etl/internal/models"
)

// DecodeError reports a message body that is not structurally parseable.
// The message is discarded; decode errors never abort a run.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode record: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode parses a JSON object body into a RawRecord. Scalar values are
// coerced to strings; nested objects or arrays make the body malformed.
// Missing fields are not an error here: presence checks belong to the
// normalizer so that partially malformed records are logged, not silently
// dropped at the lowest layer.
func Decode(body []byte) (models.RawRecord, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &DecodeError{Err: err}
	}

	record := make(models.RawRecord, len(fields))
	for name, value := range fields {
		switch v := value.(type) {
		case string:
			record[name] = v
		case float64:
			record[name] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			record[name] = strconv.FormatBool(v)
		case nil:
			record[name] = ""
		default:
			return nil, &DecodeError{Err: fmt.Errorf("field %q is not a scalar", name)}
		}
	}
	return record, nil
}
