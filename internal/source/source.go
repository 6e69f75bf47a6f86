// Package source finds CTI input files on disk.
package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/dgallion1/ctidoc/internal/parser"
	"github.com/gobwas/glob"
)

// File is an input file and its path relative to the walk root.
type File struct {
	Path string
	Rel  string
}

// Matcher filters relative, slash-separated paths against include globs.
// An empty Matcher accepts everything.
type Matcher struct {
	patterns []glob.Glob
}

// NewMatcher compiles include patterns. "*" stays within one directory
// and "**" crosses directories.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compile include pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, g)
	}
	return m, nil
}

// Match reports whether rel is included.
func (m *Matcher) Match(rel string) bool {
	if m == nil || len(m.patterns) == 0 {
		return true
	}
	for _, g := range m.patterns {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// Walk returns every supported input file under root, sorted by relative
// path. If root is a file it is returned alone, regardless of includes.
func Walk(root string, includes []string) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []File{{Path: root, Rel: filepath.Base(root)}}, nil
	}

	m, err := NewMatcher(includes)
	if err != nil {
		return nil, err
	}

	var files []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !parser.IsSupportedExtension(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if !m.Match(filepath.ToSlash(rel)) {
			return nil
		}
		files = append(files, File{Path: path, Rel: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	return files, nil
}
