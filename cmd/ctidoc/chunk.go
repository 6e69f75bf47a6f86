package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/ctidoc/internal/chunker"
	"github.com/dgallion1/ctidoc/internal/parser"
	"github.com/spf13/cobra"
)

var chunkFlags struct {
	maxTokens int
	overlap   float64
}

var chunkCmd = &cobra.Command{
	Use:   "chunk <file.md>",
	Short: "Split an existing markdown document into overlapping chunks",
	Long: `Split a markdown file into chunk files written next to it as
{name}_chunk_{i}.md. A document that already fits is left alone.`,
	Args: cobra.ExactArgs(1),
	RunE: runChunk,
}

func init() {
	f := chunkCmd.Flags()
	f.IntVar(&chunkFlags.maxTokens, "max-tokens", chunker.DefaultConfig().MaxTokens, "maximum estimated tokens per chunk")
	f.Float64Var(&chunkFlags.overlap, "overlap", chunker.DefaultConfig().OverlapRatio, "share of max-tokens repeated between chunks")
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if chunkFlags.overlap < 0 || chunkFlags.overlap >= 1 {
		return fmt.Errorf("--overlap must be in [0,1), got %g", chunkFlags.overlap)
	}
	text := string(data)
	out := cmd.OutOrStdout()

	tree, err := (&parser.MarkdownParser{}).Parse(strings.NewReader(text), path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (~%d tokens)\n", tree.Title, chunker.EstimateTokens(text))
	for _, h := range tree.Headings() {
		fmt.Fprintf(out, "  - %s\n", h)
	}

	cfg := chunker.Config{MaxTokens: chunkFlags.maxTokens, OverlapRatio: chunkFlags.overlap}
	parts := chunker.Outputs(text, cfg, filepath.Base(path))
	if len(parts) == 1 {
		fmt.Fprintln(out, "Document fits in a single chunk, nothing written.")
		return nil
	}

	stem := strings.TrimSuffix(path, filepath.Ext(path))
	for _, p := range parts {
		name := stem + p.Suffix + ".md"
		if err := os.WriteFile(name, []byte(p.Content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		fmt.Fprintf(out, "Wrote %s (~%d tokens)\n", name, chunker.EstimateTokens(p.Content))
	}
	return nil
}
