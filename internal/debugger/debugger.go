// Package debugger implements the interactive stepping frontend (spec.md
// §4.7), grounded on pyscal's frontend.Frontend: a command loop that
// drives when the evaluator pauses, and the evaluator's collaboration
// hooks (enter/leave function, scope changes, PRINT/READ) that make that
// possible. It implements eval.Frontend structurally, without importing
// the eval package, so the dependency only runs one way.
package debugger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/tala-lang/tala/internal/scope"
	"github.com/tala-lang/tala/internal/token"
	"github.com/tala-lang/tala/internal/types"
)

type command struct {
	name string
	help string
}

var commands = []command{
	{"help", "help [cmd] -- print help"},
	{"continue", "continue -- run until a breakpoint is reached"},
	{"step", "step -- step to the next line or into a function"},
	{"next", "next -- step to the next line"},
	{"return", "return -- run until a function returns"},
	{"list", "list -- prints a notice; source listing is not supported"},
	{"print", "print [var] -- print a variable's value"},
	{"break", "break [line] -- set a breakpoint on line"},
	{"delete", "delete [line] -- remove breakpoint from line"},
	{"info", "info -- show all breakpoints"},
	{"exit", "exit -- finish this debug session"},
}

func commandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}
	return names
}

func helpFor(name string) (string, bool) {
	for _, c := range commands {
		if c.name == name {
			return c.help, true
		}
	}
	return "", false
}

// Debugger is the interactive Frontend. Construct with New and wire it
// into eval.Interpret in place of eval.StdFrontend when --debug is set.
type Debugger struct {
	args        []string
	breakpoints map[int]bool

	cmd        string // "", "step", "next", or "return"; "" means freely running
	cmdDepth   int
	cmdLineNo  int
	hasCmdLine bool

	lastPrinted string

	stack    []*scope.FuncSymbol
	curScope *scope.Scope
	ctx      token.SourceContext

	stdin        *bufio.Reader
	stdout       io.Writer
	pendingWords []string

	exit func(code int)
}

func New(args []string, stdin io.Reader, stdout io.Writer) *Debugger {
	return &Debugger{
		args:        args,
		breakpoints: make(map[int]bool),
		cmd:         "step",
		stdin:       bufio.NewReader(stdin),
		stdout:      stdout,
		exit:        os.Exit,
	}
}

func (d *Debugger) EnterFunc(sym *scope.FuncSymbol) { d.stack = append(d.stack, sym) }
func (d *Debugger) LeaveFunc()                      { d.stack = d.stack[:len(d.stack)-1] }
func (d *Debugger) ScopeChanged(s *scope.Scope)      { d.curScope = s }

// VisitLine is called before every statement; it either returns
// immediately (not yet inside a function, or this line isn't a break
// point under the current stepping mode) or prints the current location
// and blocks on a command.
func (d *Debugger) VisitLine(ctx token.SourceContext) {
	if len(d.stack) == 0 {
		return
	}
	if !d.shouldBreak(ctx.LineNo) {
		return
	}
	d.ctx = ctx
	d.printCtx()
	d.readCmd()
}

func (d *Debugger) shouldBreak(lineNo int) bool {
	if d.hasCmdLine && d.cmdLineNo == lineNo && len(d.stack) == d.cmdDepth {
		return false
	}

	switch d.cmd {
	case "step":
		return true
	case "next":
		if len(d.stack) <= d.cmdDepth {
			return true
		}
	case "return":
		if len(d.stack) < d.cmdDepth {
			return true
		}
	}
	return d.breakpoints[lineNo]
}

func (d *Debugger) printCtx() {
	fmt.Fprintf(d.stdout, "In function <%s>\n", d.stack[len(d.stack)-1].Name)
	fmt.Fprintln(d.stdout, d.ctx.String())
}

func (d *Debugger) readCmd() {
	for {
		fmt.Fprint(d.stdout, "tala-dbg> ")
		line, ok := d.nextLine()
		if !ok {
			d.exit(0)
			return
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		matches := matchingCommands(fields[0])
		if len(matches) == 0 {
			fmt.Fprintf(d.stdout, "Unknown command. Type 'help' for help%s\n", d.suggest(fields[0]))
			continue
		}
		if len(matches) > 1 {
			fmt.Fprintln(d.stdout, "Ambiguous command. Type 'help' for help")
			continue
		}
		cmd := matches[0]

		arg := ""
		if len(fields) > 1 {
			arg = fields[1]
		}

		lineNo := d.ctx.LineNo
		if (cmd == "break" || cmd == "delete") && arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintln(d.stdout, "Invalid line number")
				continue
			}
			lineNo = n
		}

		if d.execCommand(cmd, arg, lineNo) {
			return
		}
	}
}

// matchingCommands returns every command name prefixed by s — the
// ambiguous-unless-unique-prefix rule spec.md §4.7 describes.
func matchingCommands(s string) []string {
	var out []string
	for _, c := range commands {
		if strings.HasPrefix(c.name, s) {
			out = append(out, c.name)
		}
	}
	return out
}

// suggest offers a "did you mean" hint for a command that matched no
// prefix at all, using the same fuzzy-ranking library the analyzer uses
// for undeclared identifiers.
func (d *Debugger) suggest(s string) string {
	ranks := fuzzy.RankFindFold(s, commandNames())
	if len(ranks) == 0 {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", ranks[0].Target)
}

// execCommand runs one fully resolved command and reports whether the
// debugger should stop blocking and let evaluation proceed.
func (d *Debugger) execCommand(cmd, arg string, lineNo int) bool {
	switch cmd {
	case "help":
		if h, ok := helpFor(arg); ok {
			fmt.Fprintln(d.stdout, h)
		} else {
			fmt.Fprintln(d.stdout, "Available commands:")
			fmt.Fprintf(d.stdout, "    %s\n", strings.Join(commandNames(), ", "))
			fmt.Fprintln(d.stdout, "You can type any unambiguous prefix of a command.")
		}

	case "continue":
		d.cmd, d.hasCmdLine = "", false
		return true

	case "step", "next", "return":
		d.cmd = cmd
		d.cmdDepth = len(d.stack)
		d.cmdLineNo = d.ctx.LineNo
		d.hasCmdLine = true
		return true

	case "list":
		fmt.Fprintln(d.stdout, "source listing not available")

	case "print":
		name := arg
		if name == "" {
			name = d.lastPrinted
		}
		d.lastPrinted = name

		sym, ok := d.curScope.Lookup(name, false).(*scope.VarSymbol)
		if !ok {
			fmt.Fprintf(d.stdout, "No variable %q in current scope\n", name)
		} else {
			fmt.Fprintf(d.stdout, "%s: %s\n", name, sym.Value.String())
		}

	case "break":
		d.breakpoints[lineNo] = true
		fmt.Fprintf(d.stdout, "Breakpoint set: %d\n", lineNo)

	case "delete":
		delete(d.breakpoints, lineNo)
		fmt.Fprintf(d.stdout, "Breakpoint deleted: %d\n", lineNo)

	case "info":
		fmt.Fprintf(d.stdout, "Breakpoints: %v\n", breakpointLines(d.breakpoints))

	case "exit":
		d.exit(0)
	}
	return false
}

func breakpointLines(bp map[int]bool) []int {
	lines := make([]int, 0, len(bp))
	for n := range bp {
		lines = append(lines, n)
	}
	return lines
}

func (d *Debugger) nextLine() (string, bool) {
	line, err := d.stdin.ReadString('\n')
	if line == "" && err != nil {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

func (d *Debugger) Print(v types.Value) {
	fmt.Fprint(d.stdout, v.String())
}

// Read pulls the next whitespace-delimited word, refilling from stdin one
// line at a time — the same cross-call word buffer pyscal's
// helpers.input_word shares with the debugger's own command prompt.
func (d *Debugger) Read() (types.Value, error) {
	for len(d.pendingWords) == 0 {
		line, ok := d.nextLine()
		if !ok {
			return types.Value{}, io.EOF
		}
		d.pendingWords = strings.Fields(line)
	}
	w := d.pendingWords[0]
	d.pendingWords = d.pendingWords[1:]
	return types.StringValue(w), nil
}

func (d *Debugger) Args() []types.Value {
	vals := make([]types.Value, len(d.args))
	for i, a := range d.args {
		vals[i] = types.StringValue(a)
	}
	return vals
}
