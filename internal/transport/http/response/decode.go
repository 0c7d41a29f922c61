package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/raknago/parking-backend/internal/domain"
)

// DecodeJSON decodes a JSON request body into dst.
// It rejects multiple JSON values.
func DecodeJSON(r *http.Request, dst any) error {
	return decode(json.NewDecoder(r.Body), dst)
}

// DecodeFields decodes a JSON object body into document fields.
// Numbers become int64 when integral, float64 otherwise.
func DecodeFields(r *http.Request) (domain.Fields, error) {
	var raw map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := decode(dec, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrInvalidJSON(errors.New("body must be a JSON object"))
	}
	fields, err := domain.NormalizeFields(raw)
	if err != nil {
		return nil, domain.ErrInvalidJSON(err)
	}
	return fields, nil
}

// ParseValue reads a query-string filter value: JSON scalars keep their
// type, anything else is a string.
func ParseValue(s string) any {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return s
	}
	switch v.(type) {
	case bool, nil, json.Number, string:
		if nv, err := domain.NormalizeValue(v); err == nil {
			return nv
		}
	}
	return s
}

func decode(dec *json.Decoder, dst any) error {
	if err := dec.Decode(dst); err != nil {
		return domain.ErrInvalidJSON(err)
	}

	// Disallow trailing data: {}{}
	if err := dec.Decode(&struct{}{}); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return domain.ErrInvalidJSON(err)
	}
	return domain.ErrInvalidJSON(errors.New("multiple JSON values"))
}
