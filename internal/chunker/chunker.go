package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/ctidoc/internal/doctree"
)

// Config controls chunking behavior.
type Config struct {
	MaxTokens    int     // Upper bound per chunk in estimated tokens.
	OverlapRatio float64 // Share of MaxTokens repeated at the start of the next chunk.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:    800,
		OverlapRatio: 0.22,
	}
}

// OverlapTokens is the overlap budget in tokens.
func (c Config) OverlapTokens() int {
	return int(float64(c.MaxTokens) * c.OverlapRatio)
}

// Split breaks text into paragraph-aligned pieces of at most MaxTokens
// where possible. Text that already fits is returned unchanged as the only
// piece. A single paragraph larger than MaxTokens is never cut.
func Split(text string, cfg Config) []string {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	if EstimateTokens(text) <= cfg.MaxTokens {
		return []string{text}
	}

	paragraphs := splitByParagraphs(text)
	overlapTokens := cfg.OverlapTokens()

	var result []string
	current := ""

	for _, para := range paragraphs {
		paraTokens := EstimateTokens(para)
		currentTokens := EstimateTokens(current)

		// Would adding this paragraph exceed the limit?
		if currentTokens+paraTokens > cfg.MaxTokens && current != "" {
			result = append(result, strings.TrimSpace(current))

			// Start next chunk with overlap from end of current.
			if overlapTokens > 0 && currentTokens > overlapTokens {
				current = getOverlapText(current, overlapTokens)
			} else {
				current = ""
			}
		}

		if current != "" {
			current += "\n\n" + para
		} else {
			current = para
		}
	}

	if strings.TrimSpace(current) != "" {
		result = append(result, strings.TrimSpace(current))
	}

	return result
}

// Chunk splits text and annotates each piece with its position and size.
func Chunk(text string, cfg Config) []doctree.Chunk {
	parts := Split(text, cfg)
	chunks := make([]doctree.Chunk, len(parts))
	for i, part := range parts {
		chunks[i] = doctree.Chunk{
			Text:   part,
			Index:  i + 1,
			Total:  len(parts),
			Tokens: EstimateTokens(part),
		}
	}
	return chunks
}

// Header is the comment block placed above a chunk's text. info is an
// optional free-form label such as the source file.
func Header(c doctree.Chunk, info string) string {
	label := fmt.Sprintf("CHUNK %d of %d", c.Index, c.Total)
	if info != "" {
		label += " " + info
	}
	return fmt.Sprintf("<!-- %s -->\n<!-- Tokens: ~%d -->\n\n", label, c.Tokens)
}

// Output is one file's worth of a chunked document. Suffix goes between the
// base name and the extension; it is empty for an unsplit document.
type Output struct {
	Suffix  string
	Content string
}

// Outputs chunks a rendered document. A document that fits stays whole
// and unwrapped; otherwise every chunk gets a header and a "_chunk_{i}" suffix.
func Outputs(text string, cfg Config, info string) []Output {
	chunks := Chunk(text, cfg)
	if len(chunks) == 1 {
		return []Output{{Content: text}}
	}
	out := make([]Output, len(chunks))
	for i, c := range chunks {
		out[i] = Output{
			Suffix:  fmt.Sprintf("_chunk_%d", c.Index),
			Content: Header(c, info) + c.Text,
		}
	}
	return out
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

var sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

// splitSentences splits after ., ! or ? when followed by whitespace. The
// punctuation stays with its sentence; the whitespace is dropped.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, m := range sentenceEnd.FindAllStringIndex(text, -1) {
		sentences = append(sentences, text[start:m[0]+1])
		start = m[1]
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

// getOverlapText takes whole sentences from the end of text while they fit
// in targetTokens, stopping at the first that does not.
func getOverlapText(text string, targetTokens int) string {
	sentences := splitSentences(text)
	var kept []string
	used := 0
	for i := len(sentences) - 1; i >= 0; i-- {
		tokens := EstimateTokens(sentences[i])
		if used+tokens > targetTokens {
			break
		}
		kept = append(kept, sentences[i])
		used += tokens
	}
	// Restore original order.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}
