// Package debug provides an interactive, line-oriented debugger for
// the tree-walking evaluator: breakpoints on source lines, a step
// mode that pauses before every statement, and inspection of the
// current environment chain and call stack. It hooks the evaluator
// through Interpreter.BeforeStatement rather than instrumenting any
// particular opcode loop, since there is no bytecode in this
// implementation.
package debug

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/kristofer/lox/pkg/environment"
	"github.com/kristofer/lox/pkg/interpreter"
)

// Debugger pauses evaluation at breakpoints or, in step mode, before
// every statement, and answers interactive commands over an
// io.Reader/io.Writer pair (normally stdin/stdout).
type Debugger struct {
	interp      *interpreter.Interpreter
	breakpoints map[int]bool
	stepMode    bool
	enabled     bool

	in  *bufio.Scanner
	out io.Writer
}

// New creates a Debugger attached to interp. It installs itself as
// interp's BeforeStatement hook; Enable/Disable toggle whether that
// hook actually pauses execution.
func New(interp *interpreter.Interpreter, in io.Reader, out io.Writer) *Debugger {
	d := &Debugger{
		interp:      interp,
		breakpoints: make(map[int]bool),
		in:          bufio.NewScanner(in),
		out:         out,
	}
	interp.BeforeStatement = d.beforeStatement
	return d
}

// Enable activates the debugger.
func (d *Debugger) Enable() { d.enabled = true }

// Disable deactivates the debugger; BeforeStatement becomes a no-op.
func (d *Debugger) Disable() { d.enabled = false }

// SetStepMode enables or disables step mode. In step mode, execution
// pauses before every statement regardless of breakpoints.
func (d *Debugger) SetStepMode(enabled bool) { d.stepMode = enabled }

// AddBreakpoint arms a breakpoint at the given source line.
func (d *Debugger) AddBreakpoint(line int) { d.breakpoints[line] = true }

// RemoveBreakpoint disarms a breakpoint at the given source line.
func (d *Debugger) RemoveBreakpoint(line int) { delete(d.breakpoints, line) }

// ClearBreakpoints disarms every breakpoint.
func (d *Debugger) ClearBreakpoints() { d.breakpoints = make(map[int]bool) }

func (d *Debugger) shouldPause(line int) bool {
	if !d.enabled {
		return false
	}
	return d.stepMode || d.breakpoints[line]
}

func (d *Debugger) beforeStatement(line int, env *environment.Environment) {
	if !d.shouldPause(line) {
		return
	}
	fmt.Fprintf(d.out, "\n=== paused at line %d ===\n", line)
	d.prompt(line, env)
}

// prompt runs the interactive command loop until the user asks
// execution to continue (or step), or input is exhausted.
func (d *Debugger) prompt(line int, env *environment.Environment) {
	for {
		fmt.Fprint(d.out, "debug> ")
		if !d.in.Scan() {
			d.enabled = false
			return
		}

		fields := strings.Fields(strings.TrimSpace(d.in.Text()))
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help", "h", "?":
			d.printHelp()
		case "continue", "c":
			d.stepMode = false
			return
		case "step", "s":
			d.stepMode = true
			return
		case "locals", "l":
			d.showEnvironment(env)
		case "globals", "g":
			d.showEnvironment(d.interp.Globals())
		case "callstack", "cs":
			d.showCallStack()
		case "where", "w":
			fmt.Fprintf(d.out, "line %d\n", line)
		case "breakpoint", "b":
			d.handleBreakpointCommand(fields, true)
		case "delete", "d":
			d.handleBreakpointCommand(fields, false)
		case "quit", "q":
			d.enabled = false
			return
		default:
			fmt.Fprintf(d.out, "unknown command: %s (type 'help' for commands)\n", fields[0])
		}
	}
}

func (d *Debugger) handleBreakpointCommand(fields []string, add bool) {
	if len(fields) < 2 {
		fmt.Fprintln(d.out, "usage: breakpoint <line> | delete <line>")
		return
	}
	line, err := strconv.Atoi(fields[1])
	if err != nil {
		fmt.Fprintln(d.out, "invalid line number")
		return
	}
	if add {
		d.AddBreakpoint(line)
		fmt.Fprintf(d.out, "breakpoint set at line %d\n", line)
	} else {
		d.RemoveBreakpoint(line)
		fmt.Fprintf(d.out, "breakpoint cleared at line %d\n", line)
	}
}

// showEnvironment prints every binding directly owned by env, without
// walking into its enclosing scopes. Intermediate enclosing scopes are
// not shown by any command; "globals" shows the root scope.
func (d *Debugger) showEnvironment(env *environment.Environment) {
	bindings := env.Bindings()
	if len(bindings) == 0 {
		fmt.Fprintln(d.out, "  (none)")
		return
	}
	names := maps.Keys(bindings)
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(d.out, "  %s = %s\n", name, bindings[name].String())
	}
}

func (d *Debugger) showCallStack() {
	frames := d.interp.CallStack()
	if len(frames) == 0 {
		fmt.Fprintln(d.out, "  (top level)")
		return
	}
	for i := len(frames) - 1; i >= 0; i-- {
		fmt.Fprintf(d.out, "  %s\n", frames[i].Name)
	}
}

func (d *Debugger) printHelp() {
	fmt.Fprintln(d.out, "debugger commands:")
	fmt.Fprintln(d.out, "  help, h, ?          show this help")
	fmt.Fprintln(d.out, "  continue, c         resume execution")
	fmt.Fprintln(d.out, "  step, s             pause again before the next statement")
	fmt.Fprintln(d.out, "  locals, l           show bindings in the current scope")
	fmt.Fprintln(d.out, "  globals, g          show bindings in the global scope")
	fmt.Fprintln(d.out, "  callstack, cs       show the active function call stack")
	fmt.Fprintln(d.out, "  where, w            show the current source line")
	fmt.Fprintln(d.out, "  breakpoint <n>, b   set a breakpoint at line n")
	fmt.Fprintln(d.out, "  delete <n>, d       clear a breakpoint at line n")
	fmt.Fprintln(d.out, "  quit, q             detach the debugger and run to completion")
}
