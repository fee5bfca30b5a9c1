package stage

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"io/fs"
	"iter"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/webriots/csp"
)

// In ignores its input and produces strs.
func In(strs ...string) csp.Stage[string] {
	return csp.Generate(strs...)
}

// Lines ignores its input and produces the lines read from r, without
// their line endings. Lines(os.Stdin) reads standard input.
func Lines(r io.Reader) csp.Stage[string] {
	return func(iter.Seq[string]) iter.Seq[string] {
		return func(yield func(string) bool) {
			scan(r, "lines", yield)
		}
	}
}

func scan(r io.Reader, what string, yield func(string) bool) bool {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if !yield(sc.Text()) {
			return false
		}
	}
	if err := sc.Err(); err != nil {
		fail("stage: %s: %w", what, err)
	}
	return true
}

// Cat produces the lines of each file. With no arguments the file
// names are taken from the input lines.
func Cat(files ...string) csp.Stage[string] {
	return func(in iter.Seq[string]) iter.Seq[string] {
		return func(yield func(string) bool) {
			for name := range source(files, in) {
				if !catFile(name, yield) {
					return
				}
			}
		}
	}
}

func catFile(name string, yield func(string) bool) bool {
	f, err := os.Open(name)
	if err != nil {
		fail("stage: cat: %w", err)
	}
	defer f.Close()
	return scan(f, "cat "+name, yield)
}

// Find produces the path of every non-directory entry below each root,
// walking subdirectories depth first in lexical order. A root that is a
// file produces itself; a root that does not exist produces nothing.
// With no arguments the roots are taken from the input lines.
func Find(roots ...string) csp.Stage[string] {
	return func(in iter.Seq[string]) iter.Seq[string] {
		return func(yield func(string) bool) {
			for root := range source(roots, in) {
				stopped := false
				err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
					if err != nil {
						if path == root && os.IsNotExist(err) {
							return fs.SkipAll
						}
						return err
					}
					if d.IsDir() {
						return nil
					}
					if !yield(path) {
						stopped = true
						return fs.SkipAll
					}
					return nil
				})
				if err != nil {
					fail("stage: find %s: %w", root, err)
				}
				if stopped {
					return
				}
			}
		}
	}
}

// Ls produces the regular files directly inside each directory. A
// directory that does not exist produces nothing. With no arguments the
// directories are taken from the input lines.
func Ls(dirs ...string) csp.Stage[string] {
	return func(in iter.Seq[string]) iter.Seq[string] {
		return func(yield func(string) bool) {
			for dir := range source(dirs, in) {
				entries, err := os.ReadDir(dir)
				if os.IsNotExist(err) {
					continue
				}
				if err != nil {
					fail("stage: ls %s: %w", dir, err)
				}
				for _, e := range entries {
					if !e.Type().IsRegular() {
						continue
					}
					if !yield(filepath.Join(dir, e.Name())) {
						return
					}
				}
			}
		}
	}
}

// Run ignores its input, runs command with sh -c and produces the lines
// it wrote to stdout and stderr. A command that cannot be started or
// exits with a failure status panics.
func Run(command string) csp.Stage[string] {
	return func(iter.Seq[string]) iter.Seq[string] {
		return func(yield func(string) bool) {
			out, err := exec.Command("sh", "-c", command).CombinedOutput()
			if err != nil {
				fail("stage: run %q: %w", command, err)
			}
			scan(bytes.NewReader(out), "run", yield)
		}
	}
}

// Fetch issues a GET for every input line taken as a URL and produces
// the lines of each response body. A nil client means
// http.DefaultClient. A request that fails or answers with a non-2xx
// status panics.
func Fetch(ctx context.Context, client *http.Client) csp.Stage[string] {
	if client == nil {
		client = http.DefaultClient
	}
	return lines(func(url string, yield func(string) bool) bool {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			fail("stage: fetch: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			fail("stage: fetch: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			fail("stage: fetch %s: %s", url, resp.Status)
		}
		return scan(resp.Body, "fetch "+url, yield)
	})
}
