package parser

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/dgallion1/ctidoc/internal/ctijson"
)

// JSONParser handles a single JSON document: an object or an array of objects.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader, filename string) (*Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	v, err := ctijson.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return fromValue(v, filename)
}

// JSONLinesParser handles newline-delimited JSON. Blank lines are skipped;
// the records behave like the elements of a top-level array. A malformed
// line is recorded in Input.Errors and the rest of the file is still read;
// the file fails only when no line decodes.
type JSONLinesParser struct{}

func (p *JSONLinesParser) Parse(r io.Reader, filename string) (*Input, error) {
	in := &Input{Name: filename, Array: true}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		v, err := ctijson.Parse(line)
		if err != nil {
			in.Errors = append(in.Errors, fmt.Errorf("%s line %d: %w", filename, lineNo, err))
			v = ctijson.NullValue()
		}
		in.Records = append(in.Records, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if len(in.Errors) > 0 && len(in.Errors) == len(in.Records) {
		return nil, errors.Join(in.Errors...)
	}
	return in, nil
}

// YAMLParser handles a YAML document with the same shape rules as JSON.
type YAMLParser struct{}

func (p *YAMLParser) Parse(r io.Reader, filename string) (*Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	v, err := ctijson.ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return fromValue(v, filename)
}
