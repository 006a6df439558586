package errors

import (
	goerrors "errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

const (
	// UnknownCode 无法识别的错误统一使用的状态码
	UnknownCode = 500
	// NetworkCode 请求未得到任何响应（连接失败、超时等）
	NetworkCode = 599

	metadataSeparator = ", "
)

// Status 错误的状态信息
type Status struct {
	Code     int               `json:"code,omitempty"`
	Message  string            `json:"message,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Error 带 HTTP 状态码、消息、元数据和错误链的结构化错误
type Error struct {
	Status
	cause error
}

func (e *Error) Error() string {
	var msg strings.Builder

	msg.WriteString("code=")
	msg.WriteString(strconv.Itoa(e.Code))
	msg.WriteString(metadataSeparator)
	msg.WriteString("message=")
	msg.WriteString(e.Message)

	if len(e.Metadata) > 0 {
		msg.WriteString(metadataSeparator)
		msg.WriteString("metadata={")
		first := true
		for k, v := range e.Metadata {
			if !first {
				msg.WriteString(", ")
			}
			msg.WriteString(k)
			msg.WriteByte('=')
			msg.WriteString(v)
			first = false
		}
		msg.WriteByte('}')
	}

	if e.cause != nil {
		msg.WriteString(metadataSeparator)
		msg.WriteString("cause=")
		msg.WriteString(e.cause.Error())
	}

	return msg.String()
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error {
	return e.cause
}

// Is 状态码和消息都相同时视为同一错误
func (e *Error) Is(err error) bool {
	var ge *Error
	if goerrors.As(err, &ge) {
		return e.Code == ge.Code && e.Message == ge.Message
	}
	return false
}

// WithMetadata 返回附加了元数据的新错误，原错误不变
func (e *Error) WithMetadata(m map[string]string) *Error {
	if len(m) == 0 {
		return e
	}

	err := e.clone()
	if err.Metadata == nil {
		err.Metadata = make(map[string]string, len(m))
	}
	maps.Copy(err.Metadata, m)
	return err
}

// WithCause 返回附加了底层错误的新错误，原错误不变
func (e *Error) WithCause(cause error) *Error {
	if cause == nil {
		return e
	}

	err := e.clone()
	err.cause = cause
	return err
}

// GetCode 返回状态码
func (e *Error) GetCode() int {
	return e.Code
}

// GetMessage 返回消息
func (e *Error) GetMessage() string {
	return e.Message
}

// GetMetadata 返回元数据副本
func (e *Error) GetMetadata() map[string]string {
	if len(e.Metadata) == 0 {
		return nil
	}
	return maps.Clone(e.Metadata)
}

func (e *Error) clone() *Error {
	return &Error{
		Status: Status{
			Code:     e.Code,
			Message:  e.Message,
			Metadata: maps.Clone(e.Metadata),
		},
		cause: e.cause,
	}
}

// New 创建错误
func New(code int, format string, args ...any) *Error {
	message := format
	if len(args) > 0 {
		message = fmt.Sprintf(format, args...)
	}

	return &Error{
		Status: Status{
			Code:    code,
			Message: message,
		},
	}
}

// Wrap 用新的状态码和消息包装 err，err 为 nil 时返回 nil
func Wrap(err error, code int, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return New(code, format, args...).WithCause(err)
}

// FromError 将任意错误转换为 *Error
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var ge *Error
	if goerrors.As(err, &ge) {
		return ge
	}

	return New(UnknownCode, "%v", err).WithCause(err)
}

// Code 返回错误链中第一个 *Error 的状态码，nil 返回 0
func Code(err error) int {
	if err == nil {
		return 0
	}

	var ge *Error
	if goerrors.As(err, &ge) {
		return ge.Code
	}
	return UnknownCode
}

// Is 同标准库 errors.Is
func Is(err, target error) bool {
	return goerrors.Is(err, target)
}

// As 同标准库 errors.As
func As(err error, target any) bool {
	return goerrors.As(err, target)
}
