package settings

import (
	"errors"
	"fmt"

	"github.com/gnana997/plugspec/pkg/ast"
)

// ErrorKind classifies extraction failures.
type ErrorKind int

const (
	// InvalidNodeType: a resolver was handed a node shape it never accepts
	InvalidNodeType ErrorKind = iota
	// UnsupportedPattern: a recognized shape that is not one of the handled idioms
	UnsupportedPattern
	// UnresolvableSymbol: an identifier has no reachable declaration
	UnresolvableSymbol
	// MissingProperty: a required member such as `value` is absent
	MissingProperty
	// CannotEvaluate: the expression needs execution to be known
	CannotEvaluate
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidNodeType:
		return "InvalidNodeType"
	case UnsupportedPattern:
		return "UnsupportedPattern"
	case UnresolvableSymbol:
		return "UnresolvableSymbol"
	case MissingProperty:
		return "MissingProperty"
	case CannotEvaluate:
		return "CannotEvaluate"
	default:
		return "Unknown"
	}
}

// ExtractionError reports why a source expression could not be reduced to
// a value. It is returned, never panicked.
type ExtractionError struct {
	Kind    ErrorKind
	Message string
	Node    *ast.Node
}

func (e *ExtractionError) Error() string {
	if e.Node != nil && e.Node.File() != nil {
		return fmt.Sprintf("%s: %s: %s", e.Node.Location(), e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, node *ast.Node, format string, args ...any) *ExtractionError {
	return &ExtractionError{Kind: kind, Message: fmt.Sprintf(format, args...), Node: node}
}

// IsKind reports whether err is an *ExtractionError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var extractionErr *ExtractionError
	return errors.As(err, &extractionErr) && extractionErr.Kind == kind
}
