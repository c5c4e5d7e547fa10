package http

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ContentTypeJSON is sent with JSON entities.
const ContentTypeJSON = "application/json"

// Codec encodes request entities and decodes response payloads.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec is the default Codec. With UseNumber set, numbers decode as
// json.Number instead of float64.
type JSONCodec struct {
	UseNumber bool
}

// Marshal implements Codec.
func (c JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal implements Codec.
func (c JSONCodec) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if c.UseNumber {
		dec.UseNumber()
	}
	return dec.Decode(v)
}

// isJSONContentType reports whether the first Content-Type value names
// application/json, ignoring case and parameters.
func isJSONContentType(value string) bool {
	mediaType, _, _ := strings.Cut(value, ";")
	return strings.EqualFold(strings.TrimSpace(mediaType), ContentTypeJSON)
}

// DecodeJSON unmarshals a successful response body into v.
func DecodeJSON(resp *Response, v any) error {
	if resp == nil || !resp.HasBody {
		return NewCodecError("response has no body", nil)
	}
	if err := (JSONCodec{}).Unmarshal(resp.Body, v); err != nil {
		return NewCodecError("failed to decode response body", err)
	}
	return nil
}
