package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"jsjit/internal/config"
)

const (
	historyFile = ".jsjit_history"
	promptMain  = "trace> "
	promptCont  = "  ...> "
)

const replHelp = `Type trace lines; an empty line compiles them.
  :help          show this text
  :show          print the pending trace
  :reset         discard the pending trace
  :load <file>   compile a trace file
  :config        print the target configuration
  :quit          leave
`

// session is the REPL state, kept apart from the terminal so it can be
// driven line by line.
type session struct {
	cfg   *config.Config
	lines []string
}

func (s *session) pending() bool { return len(s.lines) > 0 }

// handle processes one input line and reports whether to exit.
func (s *session) handle(line string, w io.Writer) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, ":") {
		return s.command(trimmed, w)
	}
	if trimmed == "" {
		if s.pending() {
			compileText(s.cfg, "<repl>", strings.Join(s.lines, "\n")+"\n", w)
			s.lines = nil
		}
		return false
	}
	s.lines = append(s.lines, line)
	return false
}

func (s *session) command(line string, w io.Writer) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":help":
		fmt.Fprint(w, replHelp)
	case ":quit", ":exit":
		return true
	case ":show":
		for _, l := range s.lines {
			fmt.Fprintln(w, l)
		}
	case ":reset":
		s.lines = nil
	case ":load":
		if len(fields) < 2 {
			fmt.Fprintln(w, "usage: :load <file>")
			return false
		}
		src, err := os.ReadFile(fields[1])
		if err != nil {
			fmt.Fprintf(w, "cannot read %s: %v\n", fields[1], err)
			return false
		}
		compileText(s.cfg, fields[1], string(src), w)
	case ":config":
		if err := printConfig(s.cfg, w); err != nil {
			fmt.Fprintln(w, err)
		}
	default:
		fmt.Fprintln(w, "unknown command. Type :help for help.")
	}
	return false
}

func runREPL(cfg *config.Config) error {
	fmt.Println("jsjit repl. Type :help for help.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	s := &session{cfg: cfg}
	for {
		prompt := promptMain
		if s.pending() {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			break
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			s.lines = nil
			continue
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if s.handle(line, os.Stdout) {
			break
		}
	}

	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return nil
}
