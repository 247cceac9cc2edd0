package domain

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindUpload
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error 业务错误：Msg 可直接返回给客户端，Err 仅用于日志
type Error struct {
	Kind   Kind
	Msg    string
	Fields []FieldError
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string, fields ...FieldError) error {
	return &Error{Kind: KindValidation, Msg: msg, Fields: fields}
}
func Conflict(msg string) error        { return &Error{Kind: KindConflict, Msg: msg} }
func Auth(msg string) error            { return &Error{Kind: KindAuth, Msg: msg} }
func Unauthenticated(msg string) error { return &Error{Kind: KindUnauthenticated, Msg: msg} }
func Forbidden(msg string) error       { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) error        { return &Error{Kind: KindNotFound, Msg: msg} }
func Upload(msg string, err error) error {
	return &Error{Kind: KindUpload, Msg: msg, Err: err}
}

// KindOf 非 *Error 一律视为内部错误
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func IsKind(err error, k Kind) bool { return err != nil && KindOf(err) == k }

var (
	ErrDuplicate = errors.New("duplicate key")
	ErrNotFound  = errors.New("record not found")
)

const MsgInvalidCredentials = "Invalid email or password"
