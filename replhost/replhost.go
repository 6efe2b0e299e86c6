// Package replhost implements the thin external REPL driver described
// in spec.md §1/§6.4: it owns none of the language's semantics, only
// the line-at-a-time read/ready/eval/print loop and session history.
// Grounded on the teacher's repl.Start (prompt loop, dot-commands,
// per-type result coloring), generalized from the teacher's direct
// lexer/parser/evaluator calls to implish's loader.Loader +
// eval.Evaluator, and from a raw ANSI-escape const block to
// github.com/fatih/color + github.com/mattn/go-isatty so color is
// skipped automatically when output isn't a terminal.
package replhost

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"implish/eval"
	"implish/loader"
	"implish/serialize"
	"implish/value"
)

const defaultHistoryFile = ".implish_history"

// REPL is a thin loader/evaluator driver: it never parses or evaluates
// itself, only feeds lines to the Loader and checks Ready per spec.md
// §6.4.
type REPL struct {
	Ev          *eval.Evaluator
	Log         *logrus.Logger
	HistoryPath string // defaults to "~/.implish_history"; "" disables history

	prompt, contPrompt *color.Color
	errColor           *color.Color
	plain              bool // true when stdout is not a terminal
}

// New constructs a REPL. log may be nil, in which case a default
// logrus.Logger writing to stderr at Warn level is used (lifecycle
// noise stays off the REPL transcript unless the caller asks for it).
func New(ev *eval.Evaluator, log *logrus.Logger) *REPL {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}
	home, _ := os.UserHomeDir()
	hist := defaultHistoryFile
	if home != "" {
		hist = filepath.Join(home, defaultHistoryFile)
	}
	return &REPL{
		Ev:          ev,
		Log:         log,
		HistoryPath: hist,
		prompt:      color.New(color.FgCyan),
		contPrompt:  color.New(color.FgHiBlack),
		errColor:    color.New(color.FgRed, color.Bold),
	}
}

// Run drives the loop until in is exhausted or ".exit" is entered.
func (r *REPL) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	r.plain = !isatty.IsTerminal(os.Stdout.Fd())
	scanner := bufio.NewScanner(in)
	ld := loader.New(r.Ev.Sym)

	var hist *os.File
	if r.HistoryPath != "" {
		f, err := os.OpenFile(r.HistoryPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			r.Log.WithError(err).Warn("could not open history file")
		} else {
			hist = f
			defer hist.Close()
		}
	}

	r.writePrompt(out, false)
	for scanner.Scan() {
		line := scanner.Text()

		switch strings.TrimSpace(line) {
		case ".exit":
			r.Log.Debug("repl exit command received")
			return nil
		case ".clear":
			r.Ev = eval.New(r.Ev.Sym)
			fmt.Fprintln(out, "dictionary cleared")
			r.writePrompt(out, false)
			continue
		case "":
			r.writePrompt(out, false)
			continue
		}

		if hist != nil {
			fmt.Fprintln(hist, line)
		}

		if err := ld.Send(line + "\n"); err != nil {
			r.printErr(out, err)
			r.writePrompt(out, false)
			continue
		}
		if !ld.Ready() {
			r.writePrompt(out, true)
			continue
		}

		top, err := ld.Read()
		if err != nil {
			r.printErr(out, err)
			r.writePrompt(out, false)
			continue
		}

		result, err := r.Ev.Eval(ctx, top)
		if err != nil {
			r.printErr(out, err)
		} else {
			r.printResult(out, result)
		}
		r.writePrompt(out, false)
	}
	return scanner.Err()
}

func (r *REPL) writePrompt(out io.Writer, continuation bool) {
	text := "implish> "
	c := r.prompt
	if continuation {
		text = "     ... "
		c = r.contPrompt
	}
	if r.plain {
		fmt.Fprint(out, text)
		return
	}
	c.Fprint(out, text)
}

func (r *REPL) printErr(out io.Writer, err error) {
	msg := fmt.Sprintf("Error: %s", err.Error())
	if r.plain {
		fmt.Fprintln(out, msg)
		return
	}
	r.errColor.Fprintln(out, msg)
}

func (r *REPL) printResult(out io.Writer, v value.Value) {
	if _, isNil := v.(*value.Nil); isNil {
		return
	}
	fmt.Fprintln(out, serialize.Show(v))
}
