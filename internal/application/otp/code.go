package otp

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Code is the one-time password as the client sent it. Mobile clients send
// either "123456" or 123456; both carry the same digits.
type Code string

func (c *Code) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*c = ""
	case string:
		*c = Code(t)
	case json.Number:
		// 0 is a missing code, as an unset numeric field would be.
		if f, err := t.Float64(); err == nil && f == 0 {
			*c = ""
			return nil
		}
		*c = Code(t.String())
	default:
		return fmt.Errorf("otp: want string or number, got %T", v)
	}
	return nil
}
