package sessionstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrymomot/sessionstore/pkg/orm"
)

// Serializer converts a session into its stored payload.
type Serializer func(s *Session) (any, error)

// Unserializer converts a stored payload back into a session.
type Unserializer func(payload any) (*Session, error)

type codec struct {
	encode Serializer
	decode Unserializer
}

// textCodec stores sessions as JSON text.
var textCodec = codec{encode: encodeText, decode: decodeText}

// structuredCodec stores sessions as plain maps with the cookie in canonical form.
var structuredCodec = codec{encode: encodeStructured, decode: decodeStructured}

func encodeText(s *Session) (any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func decodeText(payload any) (*Session, error) {
	var data []byte
	switch v := payload.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return nil, fmt.Errorf("expected text payload, got %T", payload)
	}
	s := &Session{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

// encodeStructured returns a payload that shares no maps with s.
func encodeStructured(s *Session) (any, error) {
	return orm.CopyPayload(s.ToMap()), nil
}

func decodeStructured(payload any) (*Session, error) {
	switch v := payload.(type) {
	case nil:
		return NewSession(), nil
	case map[string]any:
		return FromMap(orm.CopyPayload(v).(map[string]any)), nil
	}
	return nil, fmt.Errorf("expected structured payload, got %T", payload)
}

// resolveCodec picks the codec pair. Custom halves select the structured
// family unless stringify was requested explicitly.
func resolveCodec(cfg *config) codec {
	if cfg.serialize == nil && cfg.unserialize == nil {
		if cfg.stringify {
			return textCodec
		}
		return structuredCodec
	}

	base := structuredCodec
	if cfg.stringifySet && cfg.stringify {
		base = textCodec
	}
	if cfg.serialize != nil {
		base.encode = cfg.serialize
	}
	if cfg.unserialize != nil {
		base.decode = cfg.unserialize
	}
	return base
}

// payloadText reports whether the resolved configuration stores text.
func payloadText(cfg *config) bool {
	if cfg.serialize == nil && cfg.unserialize == nil {
		return cfg.stringify
	}
	return cfg.stringifySet && cfg.stringify
}

// encodeSafe runs the serializer, converting failures and panics into ErrEncode.
func (c codec) encodeSafe(s *Session) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Join(ErrEncode, fmt.Errorf("panic: %v", r))
		}
	}()
	payload, err = c.encode(s)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return payload, nil
}

// decodeSafe runs the unserializer, converting failures and panics into ErrDecode.
func (c codec) decodeSafe(payload any) (s *Session, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Join(ErrDecode, fmt.Errorf("panic: %v", r))
		}
	}()
	s, err = c.decode(payload)
	if err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	if s == nil {
		s = NewSession()
	}
	return s, nil
}
