package widget

import (
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Decode converts a dispatched payload into out. Raw JSON is unmarshalled
// directly; other values take a JSON round trip. A nil or empty payload leaves
// out untouched.
func Decode(payload any, out any) error {
	var data []byte
	switch p := payload.(type) {
	case nil:
		return nil
	case json.RawMessage:
		data = p
	case []byte:
		data = p
	case string:
		data = []byte(p)
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return errors.Wrap(err, "re-encode payload")
		}
		data = b
	}
	if len(data) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(data, out), "decode payload")
}

// DecodeRecords decodes a list payload into records.
func DecodeRecords(payload any) ([]Record, error) {
	var rows []Record
	if err := Decode(payload, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
