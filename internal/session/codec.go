package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a document encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatForPath picks the encoding from a file extension. Anything that
// is not .yaml or .yml is JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Encode writes doc to w.
func Encode(w io.Writer, doc Document, f Format) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode session yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false) // DAX expressions contain < > &
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode session json: %w", err)
		}
		return nil
	}
}

// Decode reads a document from r. Unknown fields are ignored.
func Decode(r io.Reader, f Format) (Document, error) {
	var doc Document
	switch f {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
			return Document{}, fmt.Errorf("decode session yaml: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("decode session json: %w", err)
		}
	}
	return doc, nil
}

// Marshal encodes doc to bytes.
func Marshal(doc Document, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a document from bytes.
func Unmarshal(data []byte, f Format) (Document, error) {
	return Decode(bytes.NewReader(data), f)
}
