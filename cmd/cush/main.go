// Command cush filters standard input through a csp channel.
//
// One task reads lines from stdin and sends them into a buffered
// channel whose stages apply the filters selected on the command line;
// a second task receives the filtered lines and prints them.
//
//	ls -l | cush -grep '\.go$' -cut 8 -sort
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"regexp"

	"github.com/mattn/go-isatty"
	zapslog "github.com/tommoulard/zap-slog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/webriots/csp"
	"github.com/webriots/csp/stage"
)

const usage = `Usage: cush [flags]

Cush reads lines from standard input, passes them through the filters
selected by flags and prints what comes out. Filters run in this order:
trim, grep, grep-v, contain, cut, sort, uniq, quote, join.

Flags:
`

type options struct {
	trim     bool
	grep     string
	grepV    string
	contain  string
	cut      int
	delims   string
	sort     bool
	uniq     bool
	quote    string
	join     string
	capacity int
	logLevel string
	slog     bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("cush", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	fs.BoolVar(&opts.trim, "trim", false, "strip leading and trailing white space")
	fs.StringVar(&opts.grep, "grep", "", "keep lines matching this regular expression")
	fs.StringVar(&opts.grepV, "grep-v", "", "drop lines matching this regular expression")
	fs.StringVar(&opts.contain, "contain", "", "keep lines containing this text")
	fs.IntVar(&opts.cut, "cut", -1, "keep only this field, counted from zero")
	fs.StringVar(&opts.delims, "d", " \t", "field delimiter characters for -cut")
	fs.BoolVar(&opts.sort, "sort", false, "sort lines")
	fs.BoolVar(&opts.uniq, "uniq", false, "sort lines and drop duplicates")
	fs.StringVar(&opts.quote, "quote", "", "wrap lines in this delimiter")
	fs.StringVar(&opts.join, "join", "", "join all lines with this separator")
	fs.IntVar(&opts.capacity, "capacity", 64, "channel capacity, 0 for rendezvous")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	fs.BoolVar(&opts.slog, "slog", false, "send logs through the log/slog default handler")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.capacity < 0 {
		return nil, errors.New("-capacity must not be negative")
	}
	for _, pattern := range []string{opts.grep, opts.grepV} {
		if _, err := regexp.Compile(pattern); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

func (o *options) stages() []csp.Stage[string] {
	var stages []csp.Stage[string]
	if o.trim {
		stages = append(stages, stage.Trim())
	}
	if o.grep != "" {
		stages = append(stages, stage.Grep(o.grep))
	}
	if o.grepV != "" {
		stages = append(stages, stage.GrepV(o.grepV))
	}
	if o.contain != "" {
		stages = append(stages, stage.Contain(o.contain))
	}
	if o.cut >= 0 {
		stages = append(stages, stage.Cut(o.cut, o.delims))
	}
	switch {
	case o.uniq:
		stages = append(stages, stage.Uniq())
	case o.sort:
		stages = append(stages, stage.Sort())
	}
	if o.quote != "" {
		stages = append(stages, stage.Quote(o.quote))
	}
	if o.join != "" {
		stages = append(stages, stage.Join(o.join))
	}
	return stages
}

func newLogger(o *options) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(o.logLevel)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = level

	var zopts []zap.Option
	if o.slog {
		zopts = append(zopts, zapslog.WrapCore(slog.Default()))
	}
	return cfg.Build(zopts...)
}

func run(o *options, log *zap.Logger, in io.Reader, out io.Writer) (err error) {
	s := csp.NewScheduler(csp.WithLogger(log))
	defer s.Close()
	ch := csp.NewChannel(s, o.capacity, o.stages()...)

	s.Spawn("reader", func(yield csp.Yield) {
		var none iter.Seq[string] = func(func(string) bool) {}
		for line := range stage.Lines(in)(none) {
			ch.Send(yield, line)
		}
		ch.Close(yield)
	})
	s.Spawn("writer", func(yield csp.Yield) {
		w := bufio.NewWriter(out)
		defer w.Flush()
		for line := range csp.Range(yield, ch) {
			fmt.Fprintln(w, line)
		}
	})

	defer func() {
		if p := recover(); p != nil {
			te, ok := p.(*csp.TaskError)
			if !ok {
				panic(p)
			}
			err = te
		}
	}()
	return s.RunUntilComplete()
}

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// realMain runs cush and returns its exit status, so deferred calls
// such as the logger sync run before the process exits.
func realMain(args []string, in io.Reader, out, errOut io.Writer) int {
	opts, err := parseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(errOut, "cush:", err)
		return 2
	}

	log, err := newLogger(opts)
	if err != nil {
		fmt.Fprintln(errOut, "cush:", err)
		return 2
	}
	defer log.Sync()

	if err := run(opts, log, in, out); err != nil {
		log.Error("cush failed", zap.Error(err))
		fmt.Fprintln(errOut, "cush:", err)
		return 1
	}
	return 0
}
