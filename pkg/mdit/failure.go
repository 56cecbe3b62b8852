// failure.go captures aborted parse/render calls so the caller gets an error
// with a location instead of a crashed process.
package mdit

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
)

// Failure describes the most recent aborted call.
type Failure struct {
	Message string
	File    string
	Line    int

	invariant bool
}

func (f *Failure) Error() string {
	if f.File == "" {
		return f.Message
	}
	return fmt.Sprintf("%s (%s:%d)", f.Message, f.File, f.Line)
}

// ErrInvariant is wrapped by every Failure raised through Invariantf.
var ErrInvariant = errors.New("mdit: invariant violated")

// invariantPanic is the panic value raised by Invariantf.
type invariantPanic struct {
	msg  string
	file string
	line int
}

var (
	lastFailureMu sync.Mutex
	lastFailure   *Failure
)

// Invariantf aborts the current call. Guard turns the abort into a *Failure
// whose location is the caller of Invariantf.
func Invariantf(format string, args ...any) {
	_, file, line, _ := runtime.Caller(1)
	panic(invariantPanic{msg: fmt.Sprintf(format, args...), file: file, line: line})
}

// Guard runs fn and converts any panic into a *Failure. The failure is also
// recorded process-wide so TakeFailure can report it later.
func Guard(fn func()) (err error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		f := failureFrom(rec)
		lastFailureMu.Lock()
		lastFailure = f
		lastFailureMu.Unlock()
		err = f
	}()
	fn()
	return nil
}

// TakeFailure returns and clears the most recent recorded failure.
func TakeFailure() *Failure {
	lastFailureMu.Lock()
	defer lastFailureMu.Unlock()
	f := lastFailure
	lastFailure = nil
	return f
}

func failureFrom(rec any) *Failure {
	switch v := rec.(type) {
	case invariantPanic:
		return &Failure{Message: v.msg, File: v.file, Line: v.line, invariant: true}
	case error:
		f := &Failure{Message: v.Error()}
		f.File, f.Line = panicSite()
		return f
	default:
		f := &Failure{Message: fmt.Sprint(v)}
		f.File, f.Line = panicSite()
		return f
	}
}

// panicSite finds the first frame outside the Go runtime and this file,
// which is where the panic was raised.
func panicSite() (string, int) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		fr, more := frames.Next()
		if !strings.HasPrefix(fr.Function, "runtime.") && !strings.HasSuffix(fr.File, "/failure.go") {
			return fr.File, fr.Line
		}
		if !more {
			return "", 0
		}
	}
}

// Is matches ErrInvariant only for failures raised through Invariantf;
// runtime panics such as a nil dereference do not match.
func (f *Failure) Is(target error) bool {
	return target == ErrInvariant && f.invariant
}
