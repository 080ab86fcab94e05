package contract

import (
	"errors"
	"fmt"
)

var (
	ErrMissingArgument     = errors.New("required argument not found in prompt")
	ErrExternalUnavailable = errors.New("external service unavailable")
	ErrExternalBadResponse = errors.New("external service returned a bad response")
	ErrInvalidExpression   = errors.New("invalid arithmetic expression")
	ErrInference           = errors.New("model inference failed")
	ErrValidation          = errors.New("validation failed")
	// ErrDispatch marks a dispatch cycle that broke outside the capability and inference paths.
	ErrDispatch = errors.New("dispatch pipeline failed")
)

// ExpressionError reports an arithmetic expression that could not be parsed or evaluated.
type ExpressionError struct {
	Expression string
	Reason     string
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidExpression, e.Expression, e.Reason)
}

func (e *ExpressionError) Is(target error) bool {
	return target == ErrInvalidExpression
}

func NewExpressionError(expression string, format string, args ...any) error {
	return &ExpressionError{
		Expression: expression,
		Reason:     fmt.Sprintf(format, args...),
	}
}
