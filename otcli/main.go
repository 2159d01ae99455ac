package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/chzyer/readline"
	"github.com/npillmayer/otface"
	"github.com/npillmayer/otface/internal/fontload"
	"github.com/npillmayer/otface/ot"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'font.otface'
func tracer() tracing.Trace {
	return tracing.Select("font.otface")
}

func main() {
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font to load (path or file name)")
	index := flag.Uint("index", 0, "Font index within a collection")
	skip := flag.String("skip", "", "Tables to skip, comma separated [name,hmtx,OS/2]")
	flag.Parse()
	initDisplay()
	if err := setupTracing(*tlevel); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	pterm.Info.Println("Welcome to the otface CLI")
	//
	opts := otface.Options{Index: uint32(*index)}
	var err error
	if opts.SkipTables, err = parseSkipTables(*skip); err != nil {
		tracer().Errorf("%v", err)
		os.Exit(2)
	}
	intp := &Intp{}
	if err = intp.loadFont(*fontname, opts); err != nil {
		tracer().Errorf("%v", err)
		os.Exit(3)
	}
	defer intp.tf.Close()
	if intp.repl, err = readline.New("otface > "); err != nil {
		tracer().Errorf("%v", err)
		os.Exit(4)
	}
	defer intp.repl.Close()
	pterm.Info.Println("Quit with <ctrl>D")
	intp.REPL()
}

// setupTracing routes all tracers to the Go logger, at the given level.
func setupTracing(level string) error {
	switch level {
	case "Debug", "Info", "Error":
	default:
		return fmt.Errorf("invalid trace level: %s", level)
	}
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":     "go",
		"trace.font.otface":   level,
		"trace.font.opentype": level,
		"trace.font.otquery":  level,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return fmt.Errorf("cannot configure tracing: %w", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	tracer().Infof("trace level is %s", level)
	return nil
}

func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " i ",
		Style: pterm.NewStyle(pterm.BgLightBlue, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " ERR ",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgWhite),
	}
}

// Intp is the interpreter state: the loaded typeface and the table in focus.
type Intp struct {
	tf    *otface.Typeface
	repl  *readline.Instance
	table ot.Tag // current table, or 0
}

// prompt shows the family of the typeface and the current table.
func (intp *Intp) prompt() string {
	switch {
	case intp == nil || intp.tf == nil:
		return "[no font]"
	case intp.table == 0:
		return fmt.Sprintf("[%s]", intp.tf.Family())
	}
	return fmt.Sprintf("[%s %s]", intp.tf.Family(), intp.table)
}

// REPL reads and executes command lines until the user quits or input ends.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.prompt())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if intp.execute(parseCommand(line)) {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

type opcode int

// Op is a single step of a command line.
type Op struct {
	code   opcode
	arg    string
	format string
}

const (
	QUIT opcode = iota
	HELP
	TABLE
	TABLES
	INFO
	GLYPH
	KERN
	METRICS
	NAMES
	WARNINGS
)

type opFunc func(*Intp, *Op) (quit bool, err error)

// ops is indexed by opcode.
var ops = []struct {
	name string
	fn   opFunc
}{
	QUIT:     {"quit", quitOp},
	HELP:     {"help", helpOp},
	TABLE:    {"table", tableOp},
	TABLES:   {"tables", tablesOp},
	INFO:     {"info", infoOp},
	GLYPH:    {"glyph", glyphOp},
	KERN:     {"kern", kernOp},
	METRICS:  {"metrics", metricsOp},
	NAMES:    {"names", namesOp},
	WARNINGS: {"warnings", warningsOp},
}

func lookupOp(name string) (opcode, bool) {
	name = strings.ToLower(name)
	for code, op := range ops {
		if op.name == name {
			return opcode(code), true
		}
	}
	return HELP, false
}

// parseCommand splits a line into steps. Each step has the form
// "op:arg:format", e.g. "glyph:A", "glyph:U+00E9:em" or "table:OS/2".
// Unknown ops turn into HELP; steps after QUIT are dropped.
func parseCommand(line string) []Op {
	var cmd []Op
	for _, step := range strings.Fields(line) {
		parts := strings.SplitN(step, ":", 3)
		code, ok := lookupOp(parts[0])
		if !ok {
			tracer().Debugf("unknown command %q", parts[0])
		}
		cmd = append(cmd, Op{code: code, arg: getOptArg(parts, 1), format: getOptArg(parts, 2)})
		if code == QUIT {
			break
		}
	}
	return cmd
}

// execute runs the steps of a command, stopping at the first error.
// It reports whether the user asked to quit.
func (intp *Intp) execute(cmd []Op) bool {
	for i := range cmd {
		op := &cmd[i]
		tracer().Debugf("%s %q", ops[op.code].name, op.arg)
		quit, err := ops[op.code].fn(intp, op)
		if err != nil {
			pterm.Error.Println(err)
			return false
		}
		if quit {
			return true
		}
	}
	return false
}

func quitOp(intp *Intp, op *Op) (bool, error) {
	return true, nil
}

// --- Font Loading -----------------------------------------------------

func (intp *Intp) loadFont(fontname string, opts otface.Options) error {
	if fontname == "" {
		return errors.New("no font given, use flag -font")
	}
	path, err := fontload.Locate(fontname)
	if err != nil {
		return err
	}
	if intp.tf, err = fontload.LoadTypeface(path, opts); err != nil {
		return err
	}
	pterm.Printf("font tables: %v\n", intp.tf.Font().TableTags())
	return nil
}

func parseSkipTables(s string) (otface.SkipTables, error) {
	var skip otface.SkipTables
	for _, t := range strings.Split(s, ",") {
		switch strings.TrimSpace(t) {
		case "":
		case "name":
			skip |= otface.SkipName
		case "hmtx":
			skip |= otface.SkipHmtx
		case "OS/2", "os2":
			skip |= otface.SkipOS2
		default:
			return 0, fmt.Errorf("cannot skip table %q", t)
		}
	}
	return skip, nil
}

// ----------------------------------------------------------------------

var errNoTable = errors.New("no table set")

// parseRune interprets an argument as a code-point: either a single character,
// or a hex number in the form U+0041 or 0x41.
func parseRune(arg string) (rune, error) {
	if utf8.RuneCountInString(arg) == 1 {
		r, _ := utf8.DecodeRuneInString(arg)
		return r, nil
	}
	s := strings.ToUpper(arg)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "U+"), "0X")
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("not a code-point: %q", arg)
	}
	return rune(n), nil
}

func getOptArg(s []string, inx int) string {
	if len(s) > inx {
		return s[inx]
	}
	return ""
}

func (op *Op) noArg() bool {
	return op.arg == ""
}

func (op *Op) hasArg() (string, bool) {
	return op.arg, op.arg != ""
}
