package stage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/webriots/csp"
)

func collect(stages ...csp.Stage[string]) []string {
	return csp.NewPipeline(stages...).Collect(slices.Values([]string(nil)))
}

// panicErr runs f and returns the error it panicked with.
func panicErr(f func()) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = p.(error)
		}
	}()
	f()
	return nil
}

func TestCut(t *testing.T) {
	for i, word := range []string{"hello", "big", "world"} {
		t.Run(word, func(t *testing.T) {
			csp.NewPipeline(
				In("hello big world"),
				AssertCount(1),
				Split(" ", true),
				AssertCount(3),
				Join(" "),
				AssertCount(1),
				Cut(i, " "),
				AssertCount(1),
				AssertString(word),
			).Run()
		})
	}
}

func TestCutSkipsEmptyFields(t *testing.T) {
	r := require.New(t)

	r.Equal([]string{"c", "z"}, collect(In("a,,b;c", "x;y,z", "short"), Cut(2, ",;")))
	r.Equal([]string{"a", "x"}, collect(In("  a  b", "x"), Cut(0, " ")))
}

func TestGrep(t *testing.T) {
	r := require.New(t)

	r.Equal([]string{"line2"}, collect(
		In("line1\nline2\nline3"),
		Split("\n", true),
		AssertCount(3),
		Grep("line2"),
	))
	r.Equal([]string{"line1", "line3"}, collect(
		In("line1", "line2", "line3"),
		GrepV("2$"),
	))
	r.Equal([]string{"a needle here"}, collect(
		In("hay", "a needle here", "Needle"),
		Contain("needle"),
	))
}

func TestSplit(t *testing.T) {
	r := require.New(t)

	r.Len(collect(In("line1\nline2\nline3\n"), Split("\n", true)), 4)
	r.Equal([]string{"line1", "line2", "line3"}, collect(In("line1\nline2\nline3\n"), Split("\n", false)))
	r.Equal([]string{"a", "b", "", "c"}, collect(In("a,b;;c"), Split(",;", true)))
	r.Equal([]string{"whole"}, collect(In("whole"), Split("", true)))
}

func TestSortUniq(t *testing.T) {
	r := require.New(t)

	r.Equal([]string{"a", "b", "b", "c"}, collect(In("b", "c", "a", "b"), Sort()))
	r.Equal([]string{"a", "b", "c"}, collect(In("b", "c", "a", "b"), Uniq()))
	r.Empty(collect(Uniq()))
}

func TestTrimQuoteJoin(t *testing.T) {
	r := require.New(t)

	in := In("  a  ", "\tb\n")
	r.Equal([]string{"a", "b"}, collect(in, Trim()))
	r.Equal([]string{"a  ", "b\n"}, collect(in, LTrim()))
	r.Equal([]string{"  a", "\tb"}, collect(in, RTrim()))
	r.Equal([]string{`"a" "b"`}, collect(in, Trim(), Quote(`"`), Join(" ")))
	r.Equal([]string{""}, collect(Join(",")))
}

func TestAssertions(t *testing.T) {
	r := require.New(t)

	err := panicErr(func() { collect(In("a", "b"), AssertCount(3)) })
	r.ErrorIs(err, ErrAssertion)
	r.ErrorContains(err, "got 2 lines, want 3")

	err = panicErr(func() { collect(In("a", "b"), AssertString("a")) })
	r.ErrorIs(err, ErrAssertion)
	r.ErrorContains(err, `"b"`)

	err = panicErr(func() { collect(In("a", "b"), AssertStrings("a")) })
	r.ErrorIs(err, ErrAssertion)

	err = panicErr(func() { collect(In("a"), AssertStrings("a", "b")) })
	r.ErrorIs(err, ErrAssertion)

	r.NoError(panicErr(func() { collect(In("a", "b"), AssertStrings("a", "b")) }))
}

func TestOutWrite(t *testing.T) {
	r := require.New(t)

	var got []string
	var buf bytes.Buffer
	csp.NewPipeline(In("x", "y"), Out(&got), Write(&buf)).Run()
	r.Equal([]string{"x", "y"}, got)
	r.Equal("x\ny\n", buf.String())
}

func TestLines(t *testing.T) {
	r := require.New(t)

	r.Equal([]string{"one", "two", ""}, collect(Lines(strings.NewReader("one\r\ntwo\n\n"))))
}

func TestFilesystem(t *testing.T) {
	r := require.New(t)

	dir := t.TempDir()
	r.NoError(os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	for name, body := range map[string]string{
		"a.txt":     "alpha\nbeta\n",
		"sub/b.txt": "gamma\n",
		"sub/c.log": "delta\n",
	} {
		r.NoError(os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	path := func(name string) string { return filepath.Join(dir, name) }

	r.Equal([]string{path("a.txt"), path("sub/b.txt"), path("sub/c.log")}, collect(Find(dir)))
	r.Equal([]string{path("a.txt")}, collect(Ls(dir)))
	r.Equal([]string{path("sub/b.txt"), path("sub/c.log")}, collect(In(path("sub")), Ls()))
	r.Empty(collect(Find(path("missing"))))
	r.Empty(collect(Ls(path("missing"))))

	r.Equal([]string{"alpha", "beta"}, collect(Cat(path("a.txt"))))
	r.Equal([]string{"gamma"}, collect(Find(dir), Grep(`\.txt$`), GrepV(`/a\.txt$`), Cat()))

	err := panicErr(func() { collect(Cat(path("missing"))) })
	r.ErrorIs(err, os.ErrNotExist)
}

func TestRun(t *testing.T) {
	r := require.New(t)

	r.Equal([]string{"a", "b"}, collect(Run(`printf 'b\na\n'`), Sort()))
	r.Equal([]string{"to stderr"}, collect(Run("echo to stderr >&2")))

	err := panicErr(func() { collect(Run("exit 3")) })
	r.ErrorContains(err, `run "exit 3"`)
}

func TestFetch(t *testing.T) {
	r := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/missing" {
			http.NotFound(w, req)
			return
		}
		fmt.Fprintf(w, "%s\nsecond line\n", req.URL.Path)
	}))
	defer srv.Close()

	got := collect(In(srv.URL+"/a", srv.URL+"/b"), Fetch(context.Background(), srv.Client()))
	r.Equal([]string{"/a", "second line", "/b", "second line"}, got)

	err := panicErr(func() {
		collect(In(srv.URL+"/missing"), Fetch(context.Background(), nil))
	})
	r.ErrorContains(err, "404")
}

func TestChannelStages(t *testing.T) {
	r := require.New(t)

	s := csp.NewScheduler()
	ch := csp.NewChannel[string](s, 2, Trim(), GrepV("^#"), Uniq())
	var got []string
	s.Spawn("reader", func(yield csp.Yield) {
		for _, line := range []string{" b", "# comment", "a ", "b", "c"} {
			ch.Send(yield, line)
		}
		ch.Close(yield)
	})
	s.Spawn("writer", func(yield csp.Yield) {
		got = slices.Collect(csp.Range(yield, ch))
	})

	r.NoError(s.RunUntilComplete())
	r.Equal([]string{"a", "b", "c"}, got)
}
