package artifact

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Strategy is one deserialization dialect. Decode either yields a usable
// predictor or an error; it never panics outward and has no side effects.
type Strategy struct {
	Name   string
	Decode func(data []byte) (Predictor, error)
}

// Strategies returns the supported dialects in priority order. The first
// strategy to succeed wins; order therefore matters and is fixed:
// native gob first, then UTF-8 JSON, then UTF-16 JSON for artifacts exported
// through Windows tooling, then gzip-compressed JSON.
func Strategies() []Strategy {
	return []Strategy{
		{Name: "gob", Decode: decodeGob},
		{Name: "json", Decode: decodeJSON},
		{Name: "json-utf16", Decode: decodeJSONUTF16},
		{Name: "gzip+json", Decode: decodeGzipJSON},
	}
}

func decodeGob(data []byte) (Predictor, error) {
	var doc Document
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}
	return NewLinearModel(doc)
}

func decodeJSON(data []byte) (Predictor, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}
	return NewLinearModel(doc)
}

func decodeJSONUTF16(data []byte) (Predictor, error) {
	// BOM-detected with little-endian fallback, matching what spreadsheet and
	// PowerShell exports produce.
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	utf8Data, _, err := transform.Bytes(dec, data)
	if err != nil {
		return nil, fmt.Errorf("utf16 transcode: %w", err)
	}
	return decodeJSON(utf8Data)
}

func decodeGzipJSON(data []byte) (Predictor, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip open: %w", err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gzip read: %w", err)
	}
	return decodeJSON(raw)
}
