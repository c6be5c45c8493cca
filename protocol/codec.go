/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrEmptyMessage = errors.New("empty message")

// Encode marshals payload and wraps it in an envelope of type t. A nil
// payload produces an envelope with no payload field.
func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, errors.New("envelope type is empty")
	}

	e := Envelope{Type: t}

	if payload != nil {
		pb, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", t, err)
		}
		e.Payload = pb
	}

	return json.Marshal(e)
}

// MustEncode is Encode for payloads that are known to marshal.
func MustEncode(t string, payload any) []byte {
	b, err := Encode(t, payload)
	if err != nil {
		panic(err)
	}
	return b
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmptyMessage
	}

	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, err
	}

	return e, nil
}

// DecodePayload unmarshals the envelope payload into T. Types that carry no
// payload decode to the zero value.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		return out, nil
	}

	err := json.Unmarshal(env.Payload, &out)
	if err != nil {
		return out, fmt.Errorf("decode %s payload: %w", env.Type, err)
	}

	return out, nil
}
