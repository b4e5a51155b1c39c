package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("记录不存在")
	ErrAlreadySubmitted = errors.New("该月的班次已提交")
	ErrNoDraft          = errors.New("该月没有草稿")
	ErrValidation       = errors.New("校验失败")
	ErrConflict         = errors.New("并发提交冲突，请重试")
	ErrStorage          = errors.New("存储错误")
)

// ValidationError 携带出错的字段，调用方可以据此给出字段级提示
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
