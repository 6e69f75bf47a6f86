package chunker

import (
	"fmt"
	"strings"
	"testing"
)

// paragraphs builds n paragraphs of five 33-character sentences each.
func paragraphs(n int) []string {
	var out []string
	for p := 1; p <= n; p++ {
		var sentences []string
		for s := 1; s <= 5; s++ {
			sentences = append(sentences, fmt.Sprintf("Paragraph %d sentence %d ends here.", p, s))
		}
		out = append(out, strings.Join(sentences, " "))
	}
	return out
}

func TestSplit_SmallTextIsOneChunk(t *testing.T) {
	text := "  # Title\n\nshort body  \n"
	parts := Split(text, DefaultConfig())
	if len(parts) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(parts))
	}
	if parts[0] != text {
		t.Errorf("expected chunk equal to input, got %q", parts[0])
	}
}

func TestSplit_LargeTextRequiresSplitting(t *testing.T) {
	paras := paragraphs(6)
	text := strings.Join(paras, "\n\n")
	cfg := Config{MaxTokens: 100, OverlapRatio: 0.22}

	parts := Split(text, cfg)
	if len(parts) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(parts))
	}

	// Every paragraph survives whole in some chunk.
	for i, p := range paras {
		found := false
		for _, part := range parts {
			if strings.Contains(part, p) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("paragraph %d missing from chunks", i+1)
		}
	}
}

func TestSplit_OverlapSeedsNextChunk(t *testing.T) {
	text := strings.Join(paragraphs(6), "\n\n")
	parts := Split(text, Config{MaxTokens: 100, OverlapRatio: 0.22})
	if len(parts) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(parts))
	}

	// 22 tokens of overlap fits two 8-token sentences.
	want := "Paragraph 2 sentence 4 ends here. Paragraph 2 sentence 5 ends here.\n\nParagraph 3 sentence 1"
	if !strings.HasPrefix(parts[1], want) {
		t.Errorf("expected chunk 2 to start with %q, got %q", want, parts[1][:len(want)])
	}
	if !strings.HasSuffix(parts[0], "Paragraph 2 sentence 5 ends here.") {
		t.Errorf("expected chunk 1 to end with paragraph 2, got %q", parts[0])
	}
}

func TestSplit_NoOverlapWhenRatioZero(t *testing.T) {
	text := strings.Join(paragraphs(6), "\n\n")
	parts := Split(text, Config{MaxTokens: 100, OverlapRatio: 0})
	if len(parts) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(parts))
	}
	if !strings.HasPrefix(parts[1], "Paragraph 3 sentence 1") {
		t.Errorf("expected chunk 2 to start at paragraph 3, got %q", parts[1])
	}
}

func TestSplit_OverlapSkippedWhenNoSentenceFits(t *testing.T) {
	long := strings.Repeat("x", 200) + "."
	text := long + "\n\n" + long + "\n\n" + long
	parts := Split(text, Config{MaxTokens: 60, OverlapRatio: 0.1})
	if len(parts) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(parts))
	}
	for i, part := range parts {
		if part != long {
			t.Errorf("chunk %d: expected bare paragraph, got %q", i+1, part)
		}
	}
}

func TestSplit_OversizedParagraphStaysWhole(t *testing.T) {
	text := strings.Repeat("abcdefghij", 300)
	parts := Split(text, Config{MaxTokens: 100, OverlapRatio: 0.22})
	if len(parts) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(parts))
	}
	if parts[0] != text {
		t.Error("expected the paragraph to be preserved without losing characters")
	}
}

func TestChunk_Annotations(t *testing.T) {
	text := strings.Join(paragraphs(6), "\n\n")
	chunks := Chunk(text, Config{MaxTokens: 100, OverlapRatio: 0.22})
	for i, c := range chunks {
		if c.Index != i+1 {
			t.Errorf("chunk %d: expected index %d, got %d", i, i+1, c.Index)
		}
		if c.Total != len(chunks) {
			t.Errorf("chunk %d: expected total %d, got %d", i, len(chunks), c.Total)
		}
		if c.Tokens != EstimateTokens(c.Text) {
			t.Errorf("chunk %d: expected tokens %d, got %d", i, EstimateTokens(c.Text), c.Tokens)
		}
	}
}

func TestOutputs_SingleDocumentUnwrapped(t *testing.T) {
	out := Outputs("# Small\n", DefaultConfig(), "small.json")
	if len(out) != 1 {
		t.Fatalf("expected 1 output, got %d", len(out))
	}
	if out[0].Suffix != "" || out[0].Content != "# Small\n" {
		t.Errorf("expected unwrapped document, got %+v", out[0])
	}
}

func TestOutputs_ChunkHeaders(t *testing.T) {
	text := strings.Join(paragraphs(6), "\n\n")
	out := Outputs(text, Config{MaxTokens: 100, OverlapRatio: 0.22}, "actors.json")
	if len(out) < 2 {
		t.Fatalf("expected at least 2 outputs, got %d", len(out))
	}
	for i, o := range out {
		suffix := fmt.Sprintf("_chunk_%d", i+1)
		if o.Suffix != suffix {
			t.Errorf("output %d: expected suffix %q, got %q", i, suffix, o.Suffix)
		}
		head := fmt.Sprintf("<!-- CHUNK %d of %d actors.json -->\n<!-- Tokens: ~", i+1, len(out))
		if !strings.HasPrefix(o.Content, head) {
			t.Errorf("output %d: expected header %q, got %q", i, head, o.Content[:len(head)])
		}
	}
}

func TestHeader_WithoutInfo(t *testing.T) {
	c := Chunk(strings.Join(paragraphs(6), "\n\n"), Config{MaxTokens: 100})[0]
	want := fmt.Sprintf("<!-- CHUNK 1 of %d -->\n<!-- Tokens: ~%d -->\n\n", c.Total, c.Tokens)
	if got := Header(c, ""); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("One. Two!  Three?\nfour")
	want := []string{"One.", "Two!", "Three?", "four"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestEstimateTokens(t *testing.T) {
	cases := map[string]int{
		"":          0,
		"abc":       0,
		"abcd":      1,
		"ééé é":     1,
		"abcdefghi": 2,
	}
	for in, want := range cases {
		if got := EstimateTokens(in); got != want {
			t.Errorf("EstimateTokens(%q): expected %d, got %d", in, want, got)
		}
	}
}
