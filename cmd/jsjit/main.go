package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"jsjit/internal/config"
	"jsjit/internal/diag"
	"jsjit/internal/gofront"
	"jsjit/internal/lower"
	"jsjit/internal/parser"
	"jsjit/internal/source"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "jsjit - asm.js trace backend")
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  jsjit trace [-config f] [-o out.js] [-quote] [-v] file.trace")
	fmt.Fprintln(w, "  jsjit go [-config f] [-v] file.go")
	fmt.Fprintln(w, "  jsjit repl [-config f]")
	fmt.Fprintln(w, "  jsjit config [-config f]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "flags:")
	fmt.Fprintln(w, "  -config f   target description (YAML); defaults to the 32-bit layout")
	fmt.Fprintln(w, "  -o out.js   write the module to a file instead of stdout")
	fmt.Fprintln(w, "  -quote      emit the module as a JavaScript string literal")
	fmt.Fprintln(w, "  -v          report lowering progress on stderr")
}

// usageError makes run exit with status 2.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

type options struct {
	configPath string
	out        string
	quote      bool
	verbose    bool
	file       string
}

// flags each command accepts; value flags take an argument.
var commandFlags = map[string]map[string]bool{
	"trace":  {"config": true, "o": true, "quote": false, "v": false},
	"go":     {"config": true, "v": false},
	"repl":   {"config": true},
	"config": {"config": true},
}

var commandTakesFile = map[string]bool{"trace": true, "go": true}

func parseOptions(cmd string, args []string) (opts options, err error) {
	allowed := commandFlags[cmd]
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") || a == "-" {
			if !commandTakesFile[cmd] || opts.file != "" {
				return opts, &usageError{fmt.Sprintf("unexpected argument: %s", a)}
			}
			opts.file = a
			continue
		}
		name := strings.TrimLeft(a, "-")
		value, hasValue := "", false
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, value, hasValue = name[:eq], name[eq+1:], true
		}
		takesValue, ok := allowed[name]
		if !ok {
			return opts, &usageError{fmt.Sprintf("unknown flag: %s", a)}
		}
		if takesValue && !hasValue {
			if i+1 >= len(args) {
				return opts, &usageError{fmt.Sprintf("missing value for -%s", name)}
			}
			i++
			value = args[i]
		}
		if !takesValue && hasValue {
			return opts, &usageError{fmt.Sprintf("flag -%s takes no value", name)}
		}
		switch name {
		case "config":
			opts.configPath = value
		case "o":
			opts.out = value
		case "quote":
			opts.quote = true
		case "v":
			opts.verbose = true
		}
	}
	if commandTakesFile[cmd] && opts.file == "" {
		return opts, &usageError{fmt.Sprintf("%s: missing input file", cmd)}
	}
	return opts, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	cmd := args[0]
	switch cmd {
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	case "trace", "go", "repl", "config":
	default:
		fmt.Fprintf(stderr, "jsjit: unknown command %q\n", cmd)
		usage(stderr)
		return 2
	}
	opts, err := parseOptions(cmd, args[1:])
	if err != nil {
		fmt.Fprintf(stderr, "jsjit: %v\n", err)
		usage(stderr)
		return 2
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "jsjit: %v\n", err)
		return 1
	}
	switch cmd {
	case "trace":
		err = compileTrace(cfg, opts, stdout, stderr)
	case "go":
		err = compileGo(cfg, opts, stdout, stderr)
	case "repl":
		err = runREPL(cfg)
	case "config":
		err = printConfig(cfg, stdout)
	}
	if err != nil {
		fmt.Fprintf(stderr, "jsjit: %v\n", err)
		return 1
	}
	return 0
}

var errDiagnostics = errors.New("trace has errors")

func compileTrace(cfg *config.Config, opts options, stdout, stderr io.Writer) error {
	src, err := os.ReadFile(opts.file)
	if err != nil {
		return err
	}
	t, diags := parser.Parse(source.NewFile(opts.file, string(src)))
	if diags != nil {
		diag.Print(stderr, diags)
		return errDiagnostics
	}
	var log io.Writer
	if opts.verbose {
		log = stderr
	}
	mod, res, err := lower.Compile(t, cfg, log)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.file, err)
	}
	if opts.verbose {
		printExits(stderr, res)
	}
	text := mod.Source
	if opts.quote {
		text = mod.Quote() + "\n"
	}
	if opts.out != "" {
		return os.WriteFile(opts.out, []byte(text), 0o644)
	}
	_, err = io.WriteString(stdout, text)
	return err
}

func compileGo(cfg *config.Config, opts options, stdout, stderr io.Writer) error {
	src, err := os.ReadFile(opts.file)
	if err != nil {
		return err
	}
	traces, terr := gofront.Translate(opts.file, src)
	if len(traces) == 0 {
		return terr
	}
	var log io.Writer
	if opts.verbose {
		log = stderr
		for _, t := range traces {
			fmt.Fprint(stderr, t.Format())
		}
	}
	mod, results, err := lower.CompileAll(traces, cfg, log)
	if err != nil {
		return err
	}
	if opts.verbose {
		for _, res := range results {
			printExits(stderr, res)
		}
	}
	if _, err := io.WriteString(stdout, mod.Source); err != nil {
		return err
	}
	return terr
}

func printExits(w io.Writer, res *lower.Result) {
	fmt.Fprintf(w, "%s: %d frame words\n", res.Func.Name, res.FrameWords)
	for _, e := range res.Exits {
		var sb strings.Builder
		for i, s := range e.Slots {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%s@%d", s.Value, s.Offset)
		}
		fmt.Fprintf(w, "  exit %d: %s: %s\n", e.Index, e.Op.Opcode, sb.String())
	}
}

func printConfig(cfg *config.Config, w io.Writer) error {
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// compileText parses and compiles trace text for the REPL.
func compileText(cfg *config.Config, name, text string, w io.Writer) {
	t, diags := parser.Parse(source.NewFile(name, text))
	if diags != nil {
		diag.Print(w, diags)
		return
	}
	mod, _, err := lower.Compile(t, cfg, nil)
	if err != nil {
		fmt.Fprintln(w, err)
		return
	}
	fmt.Fprint(w, mod.Source)
}
