package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgallion1/ctidoc/internal/chunker"
	"github.com/dgallion1/ctidoc/internal/convert"
	"github.com/dgallion1/ctidoc/internal/ctijson"
	"github.com/dgallion1/ctidoc/internal/extract"
	"github.com/dgallion1/ctidoc/internal/parser"
	"github.com/dgallion1/ctidoc/internal/render"
	"github.com/dgallion1/ctidoc/internal/schema"
)

type outputResponse struct {
	Filename string `json:"filename"`
	Tokens   int    `json:"tokens"`
	Content  string `json:"content"`
}

type documentResponse struct {
	Index      int              `json:"index"`
	Name       string           `json:"name,omitempty"`
	Tag        schema.Tag       `json:"tag"`
	ObjectType string           `json:"object_type"`
	Outline    []string         `json:"outline"`
	Outputs    []outputResponse `json:"outputs"`
}

// handleConvert renders the posted record(s) synchronously. Nothing is
// written to the sinks.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	in, ok := s.readInput(w, r)
	if !ok {
		return
	}
	opts, err := s.convertOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := convert.Input(in, opts)
	md := &parser.MarkdownParser{}
	docs := make([]documentResponse, 0, len(res.Documents))
	for _, doc := range res.Documents {
		outline := []string{}
		if tree, err := md.Parse(strings.NewReader(doc.Markdown), doc.Outputs[0].Filename); err == nil {
			outline = append(outline, tree.Headings()...)
		}
		outs := make([]outputResponse, 0, len(doc.Outputs))
		for _, o := range doc.Outputs {
			outs = append(outs, outputResponse{
				Filename: o.Filename,
				Tokens:   chunker.EstimateTokens(o.Content),
				Content:  o.Content,
			})
		}
		docs = append(docs, documentResponse{
			Index:      doc.Index,
			Name:       doc.Name,
			Tag:        doc.Tag,
			ObjectType: doc.ObjectType,
			Outline:    outline,
			Outputs:    outs,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"documents": docs,
		"skipped":   res.Skipped,
		"errors":    errorStrings(in.Errors),
	})
}

func errorStrings(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

type classification struct {
	Index      int              `json:"index"`
	Tag        schema.Tag       `json:"tag"`
	ObjectType string           `json:"object_type"`
	MitreKind  schema.MitreKind `json:"mitre_kind,omitempty"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	in, ok := s.readInput(w, r)
	if !ok {
		return
	}
	records := make([]classification, 0, len(in.Records))
	skipped := 0
	for i, rec := range in.Records {
		if !rec.IsObject() {
			skipped++
			continue
		}
		c := classification{
			Index:      i,
			Tag:        schema.Classify(rec),
			ObjectType: schema.ObjectType(rec),
		}
		if kind := schema.DetectMitre(rec, in.Name); kind != schema.MitreUnknown {
			c.MitreKind = kind
		}
		records = append(records, c)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"records": records,
		"skipped": skipped,
	})
}

type extraction struct {
	Index    int           `json:"index"`
	Tree     ctijson.Value `json:"tree"`
	KeyPaths []string      `json:"key_paths"`
}

// handleExtract returns the pruned tree and every key path of each record.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	in, ok := s.readInput(w, r)
	if !ok {
		return
	}
	records := make([]extraction, 0, len(in.Records))
	for i, rec := range in.Records {
		paths := extract.KeyPaths(rec)
		if paths == nil {
			paths = []string{}
		}
		records = append(records, extraction{
			Index:    i,
			Tree:     extract.Extract(rec).Value(),
			KeyPaths: paths,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"records": records})
}

// readInput decodes the request body. The optional filename query
// parameter picks the decoder and names the outputs.
func (s *Server) readInput(w http.ResponseWriter, r *http.Request) (*parser.Input, bool) {
	filename := "input.json"
	if v := r.URL.Query().Get("filename"); v != "" {
		filename = sanitizeFilename(v)
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return nil, false
	}
	if len(data) == 0 {
		jsonError(w, "request body is empty", http.StatusBadRequest)
		return nil, false
	}

	in, err := parser.ParseBytes(data, filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return in, true
}

// convertOptions starts from the worker's options and applies the mode,
// chunk and max_tokens query overrides.
func (s *Server) convertOptions(r *http.Request) (convert.Options, error) {
	opts := s.orchestrator.Worker().Options()
	q := r.URL.Query()
	if v := q.Get("mode"); v != "" {
		mode, err := render.ParseMode(v)
		if err != nil {
			return opts, err
		}
		opts.Mode = mode
	}
	if v := q.Get("chunk"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("chunk must be true or false")
		}
		opts.Chunking = b
	}
	if v := q.Get("max_tokens"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, errors.New("max_tokens must be a positive integer")
		}
		opts.Chunk.MaxTokens = n
	}
	return opts, nil
}
