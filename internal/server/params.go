package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const dateOnlyLayout = "2006-01-02"

var errInvalidID = errors.New("invalid_id")

// flexibleID accepts a JSON number or a numeric string.
type flexibleID struct {
	value *int64
}

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		f.value = nil
		return nil
	}

	var raw string
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
	} else {
		raw = string(trimmed)
	}

	parsed, err := parseOptionalInt64(raw)
	if err != nil {
		return errInvalidID
	}
	f.value = parsed
	return nil
}

func (f flexibleID) Ptr() *int64 {
	return f.value
}

func (f flexibleID) Int64() int64 {
	if f.value == nil {
		return 0
	}
	return *f.value
}

func parseOptionalInt64(value string) (*int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parsePathID(value string) (int64, error) {
	parsed, err := parseOptionalInt64(value)
	if err != nil || parsed == nil || *parsed <= 0 {
		return 0, errInvalidID
	}
	return *parsed, nil
}

// money renders an amount as a JSON number fixed to the store's minor unit.
func money(d decimal.Decimal, places int32) json.Number {
	return json.Number(d.StringFixed(places))
}
