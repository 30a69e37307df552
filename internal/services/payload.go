package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Payload is a decoded JSON object body. Values keep their JSON types so
// callers can tell a missing field from one of the wrong type.
type Payload map[string]any

// DecodePayload reads a single JSON object from r. Numbers are kept as
// json.Number. An empty body decodes to an empty Payload.
func DecodePayload(r io.Reader) (Payload, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrMalformedBody
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Payload{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, ErrMalformedBody
	}
	if p == nil {
		// literal null
		return Payload{}, nil
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrMalformedBody
	}
	return p, nil
}

// String returns the string under key. Absent, null and empty values yield
// missing; any other non-string yields ErrWrongDataType.
func (p Payload) String(key string, missing error) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", missing
	}
	s, ok := v.(string)
	if !ok {
		return "", ErrWrongDataType
	}
	if strings.TrimSpace(s) == "" {
		return "", missing
	}
	return s, nil
}

// OptionalString is like String but an absent or null value is "" with no
// error.
func (p Payload) OptionalString(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", ErrWrongDataType
	}
	return s, nil
}

// Int returns the integer under key. Absent and null values yield missing;
// strings, booleans, fractions and out-of-range numbers yield ErrWrongDataType.
func (p Payload) Int(key string, missing error) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, missing
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, ErrWrongDataType
	}
	i, err := strconv.Atoi(n.String())
	if err != nil {
		return 0, ErrWrongDataType
	}
	return i, nil
}
