// Package convert turns decoded CTI records into rendered, optionally
// chunked, markdown documents. It performs no I/O.
package convert

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dgallion1/ctidoc/internal/chunker"
	"github.com/dgallion1/ctidoc/internal/ctijson"
	"github.com/dgallion1/ctidoc/internal/extract"
	"github.com/dgallion1/ctidoc/internal/fields"
	"github.com/dgallion1/ctidoc/internal/parser"
	"github.com/dgallion1/ctidoc/internal/render"
	"github.com/dgallion1/ctidoc/internal/schema"
)

// Options selects the renderer and chunking behavior.
type Options struct {
	Mode     render.Mode
	Chunking bool
	Chunk    chunker.Config
}

// DefaultOptions renders comprehensively and chunks at 800 tokens.
func DefaultOptions() Options {
	return Options{
		Mode:     render.ModeComprehensive,
		Chunking: true,
		Chunk:    chunker.DefaultConfig(),
	}
}

// Output is one file to write: a whole document or one of its chunks.
type Output struct {
	Filename string
	Content  string
}

// Document is one rendered record.
type Document struct {
	Index      int        // Position in the input, 0 for a single object
	Name       string     // Resolved record name, empty when none resolved
	Tag        schema.Tag // Format Classifier result
	ObjectType string     // Comprehensive type inference result
	Markdown   string
	Outputs    []Output
}

// Result holds every document produced from one input.
type Result struct {
	Documents []Document
	Skipped   int // Array elements that were not objects
}

// Chunks counts the outputs that are chunks of a split document.
func (r *Result) Chunks() int {
	n := 0
	for _, d := range r.Documents {
		if len(d.Outputs) > 1 {
			n += len(d.Outputs)
		}
	}
	return n
}

// Outputs flattens every document's outputs in order.
func (r *Result) Outputs() []Output {
	var out []Output
	for _, d := range r.Documents {
		out = append(out, d.Outputs...)
	}
	return out
}

// Render classifies a single record and renders it in the given mode.
// It returns the markdown and the record's resolved name. source is the
// input's relative path; only the mitre mode reads it.
func Render(rec ctijson.Value, mode render.Mode, source string) (markdown, name string, tag schema.Tag) {
	tag = schema.Classify(rec)
	switch mode {
	case render.ModeFields:
		set := fields.Map(rec, tag)
		return render.Fields(set, tag), set.Lookup(fields.Name).Text(), tag
	case render.ModeMitre:
		subject := schema.MitreSubject(rec)
		return render.Mitre(subject, schema.DetectMitre(rec, source)), subject.Lookup("name").Text(), tag
	}
	structured := fields.Structured(rec)
	return render.Comprehensive(structured, extract.Extract(rec), tag), structured.Lookup(fields.Name).Text(), tag
}

// Input renders every record of a decoded file. A top-level object yields
// "{base}.md"; array elements yield "{base}_{name}.md", falling back to
// "item_{n}" when a record has no name. Directory components of the input
// name are kept so callers can mirror a source tree.
func Input(in *parser.Input, opts Options) *Result {
	base := strings.TrimSuffix(in.Name, filepath.Ext(in.Name))
	res := &Result{}

	for i, rec := range in.Records {
		if !rec.IsObject() {
			res.Skipped++
			continue
		}

		md, name, tag := Render(rec, opts.Mode, in.Name)
		doc := Document{
			Index:      i,
			Name:       name,
			Tag:        tag,
			ObjectType: schema.ObjectType(rec),
			Markdown:   md,
		}

		stem := base
		if in.Array {
			label := name
			if label == "" {
				label = fmt.Sprintf("item_%d", i+1)
			}
			stem = base + "_" + SafeName(label)
		}
		doc.Outputs = outputs(md, stem, filepath.Base(in.Name), opts)

		res.Documents = append(res.Documents, doc)
	}
	return res
}

func outputs(md, stem, info string, opts Options) []Output {
	if !opts.Chunking {
		return []Output{{Filename: stem + ".md", Content: md}}
	}
	parts := chunker.Outputs(md, opts.Chunk, info)
	out := make([]Output, len(parts))
	for i, p := range parts {
		out[i] = Output{Filename: stem + p.Suffix + ".md", Content: p.Content}
	}
	return out
}

var unsafeChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SafeName makes a record name usable as a file name component.
func SafeName(name string) string {
	return unsafeChars.ReplaceAllString(strings.ReplaceAll(name, " ", "_"), "_")
}
