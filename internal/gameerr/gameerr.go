// Package gameerr holds the error kinds shared by the loader, the TI-99/4A
// compiler and the action VM. Callers test for a kind with errors.Is; context
// is attached with errors.Wrapf from github.com/pkg/errors.
package gameerr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrSignatureNotFound means no dialect signature matched the file.
	ErrSignatureNotFound = errors.New("no game signature found")

	// ErrHeaderSanity means a header count fell outside the accepted bounds.
	ErrHeaderSanity = errors.New("header failed sanity check")

	// ErrHeaderMismatch means the header disagrees with a catalog entry.
	ErrHeaderMismatch = errors.New("header does not match catalog entry")

	// ErrTextOutOfBounds means a string ran past the buffer or a length bound.
	ErrTextOutOfBounds = errors.New("text decode out of bounds")

	// ErrNonASCII means decoded text contained bytes outside printable ASCII.
	ErrNonASCII = errors.New("non-ASCII byte in text")

	// ErrOffsetBeyondFile means a structural offset points outside the file.
	ErrOffsetBeyondFile = errors.New("structural offset beyond end of file")

	// ErrUnsupportedOpcode is returned by the TI-99/4A compiler.
	ErrUnsupportedOpcode = errors.New("unsupported opcode")

	// ErrMalformedAction means an action row references an out-of-range id.
	ErrMalformedAction = errors.New("malformed action row")

	// ErrLoadFailed is the terminal error when every candidate format failed.
	ErrLoadFailed = errors.New("unsupported game")

	// ErrBadSave means serialized session state could not be applied.
	ErrBadSave = errors.New("bad saved game")
)

// Candidate records why one catalog entry was rejected.
type Candidate struct {
	Name string
	Err  error
}

// LoadError is returned when no dialect or catalog entry could load a file.
// It unwraps to ErrLoadFailed and to every candidate error, so errors.Is works
// for any kind seen during detection.
type LoadError struct {
	Dialect    string
	Candidates []Candidate
}

func (e *LoadError) Error() string {
	s := strings.Builder{}
	s.WriteString(ErrLoadFailed.Error())
	if e.Dialect != "" {
		s.WriteString(fmt.Sprintf(" (%s)", e.Dialect))
	}
	for _, c := range e.Candidates {
		s.WriteString(fmt.Sprintf("; %s: %v", c.Name, c.Err))
	}
	return s.String()
}

func (e *LoadError) Unwrap() []error {
	errs := make([]error, 0, len(e.Candidates)+1)
	errs = append(errs, ErrLoadFailed)
	for _, c := range e.Candidates {
		errs = append(errs, c.Err)
	}
	return errs
}

// Add records a failed candidate.
func (e *LoadError) Add(name string, err error) {
	e.Candidates = append(e.Candidates, Candidate{Name: name, Err: err})
}
