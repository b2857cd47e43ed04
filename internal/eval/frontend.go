package eval

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tala-lang/tala/internal/scope"
	"github.com/tala-lang/tala/internal/token"
	"github.com/tala-lang/tala/internal/types"
)

// StdFrontend is the non-interactive Frontend: tracing hooks are no-ops,
// PRINT writes straight to out, and READ pulls one whitespace-delimited
// word at a time from in — words left over on one input line carry over
// to the next READ call, mirroring pyscal's single shared word generator
// (helpers.input_word) rather than one line of input per call.
type StdFrontend struct {
	args  []string
	out   io.Writer
	words *bufio.Scanner
}

func NewStdFrontend(args []string, in io.Reader, out io.Writer) *StdFrontend {
	sc := bufio.NewScanner(in)
	sc.Split(bufio.ScanWords)
	return &StdFrontend{args: args, out: out, words: sc}
}

func (f *StdFrontend) EnterFunc(*scope.FuncSymbol)      {}
func (f *StdFrontend) LeaveFunc()                       {}
func (f *StdFrontend) ScopeChanged(*scope.Scope)        {}
func (f *StdFrontend) VisitLine(token.SourceContext)    {}

func (f *StdFrontend) Print(v types.Value) {
	fmt.Fprint(f.out, v.String())
}

func (f *StdFrontend) Read() (types.Value, error) {
	if !f.words.Scan() {
		if err := f.words.Err(); err != nil {
			return types.Value{}, err
		}
		return types.Value{}, io.EOF
	}
	return types.StringValue(f.words.Text()), nil
}

// Args wraps the program's trailing CLI arguments as string values, per
// spec.md §6: the program function's parameters receive them by
// CAST-ASSIGN, so a declared int/real parameter still parses them.
func (f *StdFrontend) Args() []types.Value {
	vals := make([]types.Value, len(f.args))
	for i, a := range f.args {
		vals[i] = types.StringValue(a)
	}
	return vals
}
