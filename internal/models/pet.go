package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexString is a value the client may send as a string, number or boolean
// (ages and weights arrive both as 3 and "3 years"). It is always rendered as a
// string; objects and arrays are kept as compact JSON text.
type FlexString string

// UnmarshalJSON accepts any JSON value.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case 't', 'f':
		b, err := strconv.ParseBool(string(data))
		if err != nil {
			return fmt.Errorf("invalid value %s", string(data))
		}
		*f = FlexString(strconv.FormatBool(b))
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*f = FlexString(buf.String())
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = FlexString(n.String())
	}
	return nil
}

// FlexBool is a flag the client may send as a boolean, a number or a string
// such as "true" or "yes". Values it does not recognize decode as false.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = FlexBool(t)
	case float64:
		*b = t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "t", "yes", "y", "on", "1":
			*b = true
		default:
			*b = false
		}
	default:
		*b = false
	}
	return nil
}

// PetProfile carries only the pet attributes the assistant is allowed to see.
// Any other key the client sends is dropped while decoding.
type PetProfile struct {
	ID      FlexString `json:"id,omitempty"`
	Name    FlexString `json:"name,omitempty"`
	Species FlexString `json:"species,omitempty"`
	Breed   FlexString `json:"breed,omitempty"`
	Age     FlexString `json:"age,omitempty"`
	Gender  FlexString `json:"gender,omitempty"`
	Color   FlexString `json:"color,omitempty"`
	Weight  FlexString `json:"weight,omitempty"`
	Notes   FlexString `json:"notes,omitempty"`
}

// UserProfile is the signed-in owner.
type UserProfile struct {
	Name string `json:"name,omitempty"`
}
