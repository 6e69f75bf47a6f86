package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dgallion1/ctidoc/internal/chunker"
	"github.com/dgallion1/ctidoc/internal/convert"
	"github.com/dgallion1/ctidoc/internal/pipeline"
	"github.com/dgallion1/ctidoc/internal/render"
	"github.com/dgallion1/ctidoc/internal/sink"
	"github.com/dgallion1/ctidoc/internal/source"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var convertFlags struct {
	mode      string
	maxTokens int
	overlap   float64
	noChunk   bool
	include   []string
	workers   int
}

var convertCmd = &cobra.Command{
	Use:   "convert <input> [output-dir]",
	Short: "Convert a CTI file or directory to markdown",
	Long: `Convert a single JSON, JSON Lines or YAML file, or every such file under a
directory. Output files mirror the input layout under output-dir (default
"output").`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVar(&convertFlags.mode, "mode", string(render.ModeComprehensive), "rendering mode: fields, comprehensive or mitre")
	f.IntVar(&convertFlags.maxTokens, "max-tokens", chunker.DefaultConfig().MaxTokens, "maximum estimated tokens per chunk")
	f.Float64Var(&convertFlags.overlap, "overlap", chunker.DefaultConfig().OverlapRatio, "share of max-tokens repeated between chunks")
	f.BoolVar(&convertFlags.noChunk, "no-chunk", false, "write whole documents only")
	f.StringSliceVar(&convertFlags.include, "include", nil, "glob of relative paths to convert (repeatable), e.g. 'feeds/**.json'")
	f.IntVar(&convertFlags.workers, "workers", 4, "files converted in parallel")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	mode, err := render.ParseMode(convertFlags.mode)
	if err != nil {
		return err
	}
	if convertFlags.overlap < 0 || convertFlags.overlap >= 1 {
		return fmt.Errorf("--overlap must be in [0,1), got %g", convertFlags.overlap)
	}
	if convertFlags.maxTokens <= 0 {
		return fmt.Errorf("--max-tokens must be positive, got %d", convertFlags.maxTokens)
	}
	outDir := "output"
	if len(args) == 2 {
		outDir = args[1]
	}

	files, err := source.Walk(args[0], convertFlags.include)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported files found in %s", args[0])
	}

	fs, err := sink.NewFS(outDir)
	if err != nil {
		return err
	}
	opts := convert.Options{
		Mode:     mode,
		Chunking: !convertFlags.noChunk,
		Chunk:    chunker.Config{MaxTokens: convertFlags.maxTokens, OverlapRatio: convertFlags.overlap},
	}
	log := newLogger()
	worker := pipeline.NewWorker(fs, nil, nil, pipeline.NewConversionStats(24*time.Hour), log, opts)
	summary := pipeline.NewSummary()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Converting %d file(s) to %s\n", len(files), outDir)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(convertFlags.workers, 1))
	for _, f := range files {
		g.Go(func() error {
			job := pipeline.NewJob(f.Rel, nil)
			data, err := os.ReadFile(f.Path)
			if err != nil {
				log.Error("read failed", "file", f.Rel, "error", err)
				job.AddError(err.Error())
				job.SetStatus(pipeline.StatusFailed, "reading")
			} else {
				job.SetFileData(data)
				worker.Process(gctx, job)
			}
			snap := job.Snapshot()
			summary.Add(snap)
			log.Debug("file done", "file", f.Rel, "status", snap.Status, "outputs", len(snap.Outputs))
			return nil
		})
	}
	_ = g.Wait()

	totals := summary.Snapshot()
	totals.Print(out)
	if totals.FailedFiles > 0 {
		return fmt.Errorf("%d of %d files failed", totals.FailedFiles, totals.Files)
	}
	return ctx.Err()
}
