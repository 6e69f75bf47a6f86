package pipeline

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgallion1/ctidoc/internal/source"
)

// SubmitDir queues every supported file under root that matches includes.
// Jobs are named by path relative to root so outputs mirror the tree.
// Files that cannot be read or queued are reported together; the rest are
// still submitted.
func (o *Orchestrator) SubmitDir(root string, includes []string) (int, error) {
	files, err := source.Walk(root, includes)
	if err != nil {
		return 0, err
	}

	var errs []error
	queued := 0
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", f.Rel, err))
			continue
		}
		if err := o.Submit(NewJob(f.Rel, data)); err != nil {
			errs = append(errs, fmt.Errorf("submit %s: %w", f.Rel, err))
			continue
		}
		queued++
	}
	return queued, errors.Join(errs...)
}
