package xmlmap

import (
	"encoding/xml"
	"errors"
	"fmt"
)

// ParseError is returned when the input is not well-formed XML. No partial
// record accompanies it.
type ParseError struct {
	Line int // 0 when unknown
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed XML at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed XML: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var errNoRoot = errors.New("document has no root element")

func newParseError(err error) *ParseError {
	pe := &ParseError{Err: err}
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		pe.Line = syn.Line
	}
	return pe
}
