// Package textenc decodes file content under a named character encoding and
// reports where decoding fails.
package textenc

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// DecodeError locates the first undecodable byte sequence.
type DecodeError struct {
	Encoding string
	Line     int // 1-based
	Offset   int // byte offset into the input
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("not valid %s at line %d (byte offset %d)", e.Encoding, e.Line, e.Offset)
}

type kind int

const (
	kindASCII kind = iota
	kindUTF8
	kindOther
)

// Codec decodes bytes under a single encoding.
type Codec struct {
	name string
	kind kind
	enc  encoding.Encoding

	asciiCompatible bool
}

// asciiSample holds the bytes line-oriented rules look at.
var asciiSample = []byte("\t\n\r #\"/*<>azAZ09")

// Lookup resolves an encoding name ("ascii", "utf-8", "latin1", "windows-1252", ...).
func Lookup(name string) (*Codec, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch normalized {
	case "", "ascii", "us-ascii":
		return &Codec{name: "ascii", kind: kindASCII, asciiCompatible: true}, nil
	case "utf-8", "utf8":
		return &Codec{name: "utf-8", kind: kindUTF8, asciiCompatible: true}, nil
	}

	enc, err := ianaindex.IANA.Encoding(normalized)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	out, err := enc.NewEncoder().Bytes(asciiSample)
	return &Codec{
		name:            normalized,
		kind:            kindOther,
		enc:             enc,
		asciiCompatible: err == nil && bytes.Equal(out, asciiSample),
	}, nil
}

// ASCIICompatible reports whether ASCII text has the same bytes under the
// codec. For such encodings whitespace and line terminators can be found in
// raw content that fails to decode.
func (c *Codec) ASCIICompatible() bool {
	return c.asciiCompatible
}

// Name returns the normalized encoding name.
func (c *Codec) Name() string {
	return c.name
}

// Decode converts data to a UTF-8 string. A *DecodeError is returned when the
// input is not valid under the encoding.
func (c *Codec) Decode(data []byte) (string, error) {
	switch c.kind {
	case kindASCII:
		for i, b := range data {
			if b >= utf8.RuneSelf {
				return "", c.errorAt(data, i)
			}
		}
		return string(data), nil

	case kindUTF8:
		if utf8.Valid(data) {
			return string(data), nil
		}
		for i := 0; i < len(data); {
			r, size := utf8.DecodeRune(data[i:])
			if r == utf8.RuneError && size <= 1 {
				return "", c.errorAt(data, i)
			}
			i += size
		}
		return string(data), nil

	default:
		out, err := c.enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", &DecodeError{Encoding: c.name, Line: 1}
		}
		// x/text decoders substitute U+FFFD for invalid input.
		if i := bytes.Index(out, []byte(string(utf8.RuneError))); i >= 0 {
			line := bytes.Count(out[:i], []byte("\n")) + 1
			return "", &DecodeError{Encoding: c.name, Line: line, Offset: -1}
		}
		return string(out), nil
	}
}

func (c *Codec) errorAt(data []byte, offset int) *DecodeError {
	return &DecodeError{
		Encoding: c.name,
		Line:     bytes.Count(data[:offset], []byte("\n")) + 1,
		Offset:   offset,
	}
}

// Encode converts UTF-8 text back to the codec's encoding.
func (c *Codec) Encode(text string) ([]byte, error) {
	switch c.kind {
	case kindASCII:
		for i := 0; i < len(text); i++ {
			if text[i] >= utf8.RuneSelf {
				return nil, fmt.Errorf("cannot encode as ascii: non-ascii byte at offset %d", i)
			}
		}
		return []byte(text), nil
	case kindUTF8:
		return []byte(text), nil
	default:
		out, err := c.enc.NewEncoder().Bytes([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("cannot encode as %s: %w", c.name, err)
		}
		return out, nil
	}
}
