// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package filesearch finds candidate config files and filters them by content.
package filesearch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/outrigdev/iniedit/pkg/gensearch"
	"github.com/outrigdev/iniedit/pkg/linemodel"
	"github.com/outrigdev/iniedit/pkg/logutil"
	"golang.org/x/sync/errgroup"
)

const DefaultExt = ".ini"

var log = logutil.Component("filesearch")

// ListCandidateFiles walks root recursively and returns every regular file
// whose name ends in ext (case-insensitive), sorted and without duplicates.
// Unreadable subdirectories are skipped.
func ListCandidateFiles(root string, ext string) ([]string, error) {
	if ext == "" {
		ext = DefaultExt
	}
	ext = strings.ToLower(ext)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot list %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cannot list %s: not a directory", root)
	}

	files := treeset.NewWithStringComparator()
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				log.WithField("path", path).WithError(err).Warn("skipping unreadable directory")
				return fs.SkipDir
			}
			return err
		}
		if d.Type().IsRegular() && strings.HasSuffix(strings.ToLower(d.Name()), ext) {
			files.Add(path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot list %s: %w", root, err)
	}

	rtn := make([]string, 0, files.Size())
	for _, v := range files.Values() {
		rtn = append(rtn, v.(string))
	}
	return rtn, nil
}

// fileObject is the searchable view of one candidate file
type fileObject struct {
	path    string
	content string
}

// GetField implements gensearch.SearchObject. "" and "content" are the file
// text, "path" is the file path.
func (f *fileObject) GetField(fieldName string, fieldMods int) string {
	var val string
	switch fieldName {
	case "", "content":
		val = f.content
	case "path":
		val = f.path
	default:
		return ""
	}
	if fieldMods&gensearch.FieldMod_ToLower != 0 {
		return strings.ToLower(val)
	}
	return val
}

func readFileObject(path string) (*fileObject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &fileObject{path: path, content: linemodel.DecodeLossy(data)}, nil
}

// Filter runs a query over a list of files with a bounded pool of readers
type Filter struct {
	Workers int              // 0 means GOMAXPROCS
	Syntax  gensearch.Syntax // "" means gensearch.SyntaxPlain
}

// Run returns the paths whose content matches query, in input order.
// An empty query returns every path. Files that cannot be read are logged
// and left out. Errors are only returned for a query that does not compile
// or a cancelled context.
func (f *Filter) Run(ctx context.Context, paths []string, query string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if query == "" {
		return append([]string(nil), paths...), nil
	}
	searcher, err := gensearch.GetSearcher(query, f.Syntax)
	if err != nil {
		return nil, err
	}
	log.WithField("searcher", gensearch.PrettyPrint(searcher)).Debug("filtering files")
	workers := f.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	matched := make([]bool, len(paths))
	jobs := make(chan int)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for idx := range paths {
			select {
			case jobs <- idx:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for i := 0; i < workers && i < len(paths); i++ {
		g.Go(func() error {
			sctx := gensearch.MakeSearchContext()
			for idx := range jobs {
				obj, err := readFileObject(paths[idx])
				if err != nil {
					log.WithField("path", paths[idx]).WithError(err).Warn("skipping unreadable file")
					continue
				}
				matched[idx] = searcher.Match(sctx, obj)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rtn []string
	for idx, path := range paths {
		if matched[idx] {
			rtn = append(rtn, path)
		}
	}
	return rtn, nil
}

// FilterFiles keeps the paths whose content contains query, ignoring case,
// in their original order. An empty query keeps everything.
func FilterFiles(paths []string, query string) []string {
	f := &Filter{}
	rtn, err := f.Run(context.Background(), paths, query)
	if err != nil {
		// plain syntax never fails to compile and the context is never cancelled
		log.WithError(err).Error("filter failed")
		return nil
	}
	return rtn
}
