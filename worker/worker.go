// Package worker implements the line-oriented JSON protocol spec.md
// §6.4 describes for embedding implish in another process (e.g. an
// editor or MCP host): one JSON request per input line, one JSON
// response per output line. Grounded on the teacher's REPL loop
// (read-one-line, evaluate, write-one-result) but replacing the
// human-prompt transcript with a machine-readable envelope, the way a
// language-server or MCP worker process would.
package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"implish/eval"
	"implish/loader"
	"implish/serialize"
)

// Request is one line of worker input, per spec.md §6.4.
type Request struct {
	Op   string `json:"op"`
	Code string `json:"code,omitempty"`
	Word string `json:"word,omitempty"`
}

// Response is one line of worker output.
type Response struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Server drives the request/response loop and owns the single
// Evaluator the whole worker session shares (spec.md §5: a dictionary
// is never shared between concurrent evaluators, but a worker process
// is single-threaded by construction — one request is fully handled
// before the next is read).
type Server struct {
	Ev  *eval.Evaluator
	Log *logrus.Logger

	mu           sync.Mutex
	lastLoadPath string
}

func New(ev *eval.Evaluator, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}
	return &Server{Ev: ev, Log: log}
}

// Run reads one Request per line from in and writes one Response per
// line to out until in is exhausted.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	enc := json.NewEncoder(out)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		id := uuid.NewString()
		if err := json.Unmarshal(line, &req); err != nil {
			s.Log.WithField("id", id).WithError(err).Warn("worker: malformed request")
			enc.Encode(Response{ID: id, Success: false, Error: err.Error()})
			continue
		}
		resp := s.handle(ctx, id, req)
		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (s *Server) handle(ctx context.Context, id string, req Request) Response {
	s.Log.WithFields(logrus.Fields{"id": id, "op": req.Op}).Debug("worker: request")
	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Op {
	case "eval":
		return s.doEval(ctx, id, req.Code)
	case "load":
		return s.doLoad(ctx, id, req.Code)
	case "list_words":
		names := make([]string, 0, len(s.Ev.Words))
		for n := range s.Ev.Words {
			names = append(names, n)
		}
		b, _ := json.Marshal(names)
		return Response{ID: id, Success: true, Result: string(b)}
	case "inspect_word":
		v, ok := s.Ev.Words[req.Word]
		if !ok {
			return Response{ID: id, Success: false, Error: "undefined word: " + req.Word}
		}
		return Response{ID: id, Success: true, Result: serialize.Show(v)}
	case "reload":
		if s.lastLoadPath == "" {
			return Response{ID: id, Success: false, Error: "reload: no file has been loaded yet"}
		}
		content, err := s.Ev.Files.Read(ctx, s.lastLoadPath)
		if err != nil {
			return Response{ID: id, Success: false, Error: err.Error()}
		}
		return s.doEval(ctx, id, content)
	default:
		return Response{ID: id, Success: false, Error: "unknown op: " + req.Op}
	}
}

func (s *Server) doEval(ctx context.Context, id, code string) Response {
	ld := loader.New(s.Ev.Sym)
	if err := ld.Send(code); err != nil {
		return Response{ID: id, Success: false, Error: err.Error()}
	}
	ld.Finalize()
	top, err := ld.Read()
	if err != nil {
		return Response{ID: id, Success: false, Error: err.Error()}
	}
	result, err := s.Ev.Eval(ctx, top)
	if err != nil {
		return Response{ID: id, Success: false, Error: err.Error()}
	}
	return Response{ID: id, Success: true, Result: serialize.Show(result)}
}

// doLoad treats code as a FILE path to read and evaluate, tracking the
// path so a later "reload" op (or watch-mode fsnotify event) knows what
// to re-read.
func (s *Server) doLoad(ctx context.Context, id, path string) Response {
	content, err := s.Ev.Files.Read(ctx, path)
	if err != nil {
		return Response{ID: id, Success: false, Error: err.Error()}
	}
	s.lastLoadPath = path
	return s.doEval(ctx, id, content)
}

// Watch starts an fsnotify.Watcher on path and re-evaluates it on every
// write or create event, writing an unsolicited {"op":"reload", ...} line to out
// each time — the watch-mode counterpart to the explicit "reload" op
// (spec.md §6.4/§4.11).
func (s *Server) Watch(ctx context.Context, path string, out io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	s.Log.WithField("path", path).Info("worker: watching for changes")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.Log.WithField("path", path).Info("worker: file changed, reloading")
			s.mu.Lock()
			resp := s.doLoad(ctx, uuid.NewString(), path)
			s.mu.Unlock()
			enc.Encode(struct {
				Response
				Op string `json:"op"`
			}{resp, "reload"})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.Log.WithError(err).Warn("worker: watcher error")
		}
	}
}
