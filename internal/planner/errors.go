package planner

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation 为所有校验错误的根错误。
	ErrValidation = errors.New("planner: validation failed")
	// ErrIterationLimit 表示卖出分支重入次数超过上限。
	ErrIterationLimit = errors.New("planner: sell pass limit exceeded")
)

// ValidationError 指出请求或订单簿中不合法的字段。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
