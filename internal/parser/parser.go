package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/ctidoc/internal/ctijson"
	"github.com/gabriel-vasile/mimetype"
)

// ErrNotRecord is returned when a file's top-level value is a scalar.
var ErrNotRecord = errors.New("top-level value must be an object or array")

// Input is one decoded CTI file.
type Input struct {
	Name    string          // Source file name
	Records []ctijson.Value // Top-level object, or every element of a top-level array
	Array   bool            // Input held a sequence of records rather than a single object

	// Errors lists records that could not be decoded. Their slots in
	// Records hold null so positions still match the source.
	Errors []error
}

// Parser decodes raw file bytes into records.
type Parser interface {
	Parse(r io.Reader, filename string) (*Input, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".json":   true,
	".jsonl":  true,
	".ndjson": true,
	".yaml":   true,
	".yml":    true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}, nil
	case ".jsonl", ".ndjson":
		return &JSONLinesParser{}, nil
	case ".yaml", ".yml":
		return &YAMLParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// ForContent picks a parser by extension, falling back to sniffing the
// content when the extension is unknown. Content that is neither JSON nor
// newline-delimited JSON is treated as YAML.
func ForContent(filename string, data []byte) Parser {
	if p, err := ForFile(filename); err == nil {
		return p
	}
	if mimetype.Detect(data).Is("application/json") {
		return &JSONParser{}
	}
	if looksLikeJSONLines(data) {
		return &JSONLinesParser{}
	}
	return &YAMLParser{}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ParseBytes decodes data with the parser chosen by ForContent.
func ParseBytes(data []byte, filename string) (*Input, error) {
	return ForContent(filename, data).Parse(bytes.NewReader(data), filename)
}

func looksLikeJSONLines(data []byte) bool {
	seen := false
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if line[0] != '{' {
			return false
		}
		seen = true
	}
	return seen
}

// fromValue wraps a decoded top-level value.
func fromValue(v ctijson.Value, filename string) (*Input, error) {
	switch v.Kind() {
	case ctijson.Object:
		return &Input{Name: filename, Records: []ctijson.Value{v}}, nil
	case ctijson.Array:
		return &Input{Name: filename, Records: v.Items(), Array: true}, nil
	default:
		return nil, fmt.Errorf("%s: %w", filename, ErrNotRecord)
	}
}
