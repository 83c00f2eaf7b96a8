// Package walker enumerates Jasmin source files under a workspace root and
// provides the validated disk-read path the dependency graph uses when it
// follows a require chain onto a file that isn't open in an editor buffer.
//
// It is grounded on github.com/boyter/gocodewalker, a dependency the
// teacher repository declares but never exercises; here it backs the
// workspace-wide file discovery used for workspace/symbol fallback search.
package walker

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/boyter/gocodewalker"
)

// Extensions are the two Jasmin file suffixes this server understands.
var Extensions = []string{"jazz", "jinc"}

// MaxFiles caps how many files a single workspace walk will enumerate
// before it stops and reports a truncation, rather than silently returning
// a partial list that looks complete.
const MaxFiles = 50_000

// Result is the outcome of walking a workspace root.
type Result struct {
	Files    []string
	Truncated bool
}

// Walk recursively finds every .jazz/.jinc file under root.
func Walk(root string) (Result, error) {
	fileListQueue := make(chan *gocodewalker.File, 256)

	fw := gocodewalker.NewFileWalker(root, fileListQueue)
	fw.AllowListExtensions = Extensions
	fw.IgnoreGitIgnore = false

	errs := make(chan error, 1)
	go func() {
		errs <- fw.Start()
	}()

	var out Result
	for f := range fileListQueue {
		if len(out.Files) >= MaxFiles {
			out.Truncated = true
			continue
		}
		out.Files = append(out.Files, f.Location)
	}

	if err := <-errs; err != nil {
		return out, fmt.Errorf("walker: scanning %s: %w", root, err)
	}

	return out, nil
}

// ReadFile reads a file's contents for the dependency graph's disk-read
// path, rejecting anything implausible before it ever reaches the parser:
// not valid UTF-8, or larger than maxSize.
func ReadFile(path string, maxSize int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("walker: %s is %d bytes, exceeds max size %d", path, info.Size(), maxSize)
	}

	r := bufio.NewReader(f)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if !utf8.Valid(data) {
		return nil, fmt.Errorf("walker: %s is not valid UTF-8", path)
	}

	return data, nil
}
