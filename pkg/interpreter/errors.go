package interpreter

import (
	"fmt"

	"github.com/kristofer/lox/pkg/token"
)

// RuntimeError is raised during evaluation (spec §7, kind 3). It
// carries the token whose line locates the failure, formatted per
// spec §6 as "<msg>\n[line L]" — callers needing the exact contracted
// diagnostic text read Error() directly; the CLI layer may still
// decorate it with color when printing to a terminal.
type RuntimeError struct {
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d]", e.Message, e.Token.Line)
}

func runtimeError(tok token.Token, message string) *RuntimeError {
	return &RuntimeError{Token: tok, Message: message}
}

// NativeError builds a RuntimeError for a native binding's own
// argument validation, where no call-site token is in scope. Its
// diagnostic line reports 0, since the fault is in the native
// implementation rather than any particular line of user source.
func NativeError(message string) *RuntimeError {
	return &RuntimeError{Message: message}
}

// returnSignal is NOT an error in the ordinary sense (spec §7, kind
// 4): it is the non-local control transfer a `return` statement
// raises, threaded back up through the same `error` return values
// every statement already propagates through (the approach spec §9's
// design notes call out as the reference's own strategy) and caught
// exactly at the enclosing function call boundary.
type returnSignal struct {
	Value token.Value
}

func (r *returnSignal) Error() string {
	// Never surfaced to a user: callFunction always intercepts this
	// before it can escape to a diagnostic sink.
	return "return escaped its enclosing function"
}

// asReturn reports whether err is a returnSignal, unwrapping it.
func asReturn(err error) (*returnSignal, bool) {
	rs, ok := err.(*returnSignal)
	return rs, ok
}
