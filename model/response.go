package model

import (
	"errors"
	"fmt"
)

// Envelope is the body of every /api response: exactly one of Data or Error is set.
type Envelope struct {
	Data  any     `json:"data"`
	Error *string `json:"error"`
}

// OK wraps a successful result.
func OK(data any) Envelope {
	return Envelope{Data: data}
}

// Fail wraps an error message.
func Fail(msg string) Envelope {
	return Envelope{Error: &msg}
}

// IDResult is returned by create, update and delete endpoints.
type IDResult struct {
	ID string `json:"id"`
}

var (
	// ErrNotFound 表示目标行不存在
	ErrNotFound = errors.New("registro não encontrado")
	// ErrEmptyUpdate 表示更新请求中没有任何可识别字段
	ErrEmptyUpdate = errors.New("Nenhum campo para atualizar")
)

// ValidationError reports an invalid request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("campo '%s' %s", e.Field, e.Reason)
}
