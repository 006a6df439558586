package validator

import (
	"errors"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// validationErrorsImpl 校验错误实现
type validationErrorsImpl struct {
	fieldErrors []FieldError
	message     string
}

func (ve *validationErrorsImpl) Error() string {
	return ve.message
}

func (ve *validationErrorsImpl) Errors() []FieldError {
	return ve.fieldErrors
}

// fieldErrorImpl 字段错误实现
type fieldErrorImpl struct {
	fieldError  validator.FieldError
	message     string
	translators map[string]ut.Translator
}

func (fe *fieldErrorImpl) Field() string {
	return fe.fieldError.Field()
}

func (fe *fieldErrorImpl) Tag() string {
	return fe.fieldError.Tag()
}

func (fe *fieldErrorImpl) Value() any {
	return fe.fieldError.Value()
}

func (fe *fieldErrorImpl) Message() string {
	return fe.message
}

func (fe *fieldErrorImpl) Translate(lang string) string {
	if trans, exists := fe.translators[lang]; exists {
		return fe.fieldError.Translate(trans)
	}
	return fe.message
}

// FieldMessages 返回 字段名 -> 错误消息，非校验错误返回 nil
func FieldMessages(err error) map[string]string {
	var ve ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	result := make(map[string]string, len(ve.Errors()))
	for _, fe := range ve.Errors() {
		if _, exists := result[fe.Field()]; !exists {
			result[fe.Field()] = fe.Message()
		}
	}
	return result
}

// HasFieldError 检查是否存在指定字段的错误
func HasFieldError(err error, field string) bool {
	_, ok := FieldMessages(err)[field]
	return ok
}

// IsValidationError 检查是否为校验错误
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}
