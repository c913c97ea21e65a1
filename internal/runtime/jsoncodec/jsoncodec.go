// Package jsoncodec centralises JSON encoding. Sonic in std-compatible
// mode keeps log emission cheap without changing the output format.
package jsoncodec

import (
	"io"

	"github.com/bytedance/sonic"
)

var codec = sonic.ConfigStd

// Marshal encodes v as JSON.
func Marshal(v any) ([]byte, error) {
	return codec.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func Unmarshal(data []byte, v any) error {
	return codec.Unmarshal(data, v)
}

// Encode writes v as JSON to w, followed by a newline.
func Encode(w io.Writer, v any) error {
	return codec.NewEncoder(w).Encode(v)
}

// Decode reads JSON from r into v.
func Decode(r io.Reader, v any) error {
	return codec.NewDecoder(r).Decode(v)
}
