package validator

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// validatorImpl 校验器实现
type validatorImpl struct {
	validator   *validator.Validate
	translators map[string]ut.Translator
	defaultLang string
}

// Validate 全局校验器实例
var (
	Validate Validator
	once     sync.Once
)

func init() {
	once.Do(func() {
		Validate = New()
	})
}

// New 创建新的校验器实例
func New(opts ...ValidationOption) Validator {
	v := &validatorImpl{
		validator:   validator.New(validator.WithRequiredStructEnabled()),
		translators: make(map[string]ut.Translator, 2),
		defaultLang: "en",
	}

	// 错误中的字段名使用 json 标签，和接口字段保持一致
	v.validator.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	for _, opt := range opts {
		opt(v)
	}

	v.initTranslators()
	v.registerRules()

	return v
}

// initTranslators 初始化中英文翻译器
func (v *validatorImpl) initTranslators() {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, zh.New())

	if trans, found := uni.GetTranslator("en"); found {
		v.translators["en"] = trans
		_ = en_translations.RegisterDefaultTranslations(v.validator, trans)
	}
	if trans, found := uni.GetTranslator("zh"); found {
		v.translators["zh"] = trans
		_ = zh_translations.RegisterDefaultTranslations(v.validator, trans)
	}
}

// registerRules 注册业务校验规则
func (v *validatorImpl) registerRules() {
	// sortdir: 排序方向，只允许 asc / desc
	_ = v.validator.RegisterValidation("sortdir", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "asc", "desc":
			return true
		}
		return false
	})

	messages := map[string]string{
		"en": "{0} must be either asc or desc",
		"zh": "{0}只能是asc或desc",
	}
	for lang, msg := range messages {
		trans, ok := v.translators[lang]
		if !ok {
			continue
		}
		_ = v.validator.RegisterTranslation("sortdir", trans,
			func(ut ut.Translator) error {
				return ut.Add("sortdir", msg, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T("sortdir", fe.Field())
				return t
			},
		)
	}
}

// Struct 校验结构体
func (v *validatorImpl) Struct(s any) error {
	return v.StructCtx(context.Background(), s)
}

// StructCtx 带上下文校验结构体
func (v *validatorImpl) StructCtx(ctx context.Context, s any) error {
	if s == nil {
		return errors.New("validation target cannot be nil")
	}
	return v.translateError(v.validator.StructCtx(ctx, s))
}

// GetValidator 获取底层的validator实例
func (v *validatorImpl) GetValidator() *validator.Validate {
	return v.validator
}

// translateError 把 validator.ValidationErrors 转成带翻译消息的错误
func (v *validatorImpl) translateError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	trans, exists := v.translators[v.defaultLang]
	if !exists {
		return err
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fieldError := &fieldErrorImpl{
			fieldError:  fe,
			message:     fe.Translate(trans),
			translators: v.translators,
		}
		fieldErrors = append(fieldErrors, fieldError)
		messages = append(messages, fieldError.message)
	}

	return &validationErrorsImpl{
		fieldErrors: fieldErrors,
		message:     strings.Join(messages, "; "),
	}
}
