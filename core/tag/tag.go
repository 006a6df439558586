// Package tag fills zero-valued struct fields from `default:"..."` tags.
package tag

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const (
	tagName   = "default"
	separator = ","
	maxDepth  = 16
)

var (
	ErrTargetMustBePointer = fmt.Errorf("target must be a pointer to struct")
	ErrTargetIsNil         = fmt.Errorf("target is nil")
	ErrUnsupportedType     = fmt.Errorf("unsupported type")
	ErrMaxDepthExceeded    = fmt.Errorf("max recursion depth exceeded")
)

var durationType = reflect.TypeOf(time.Duration(0))

// FieldError 带字段路径的默认值解析错误
type FieldError struct {
	Path  string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q (default %q): %v", e.Path, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ApplyDefaults 为结构体中的零值字段设置 default 标签声明的默认值
//
//	type Config struct {
//	    BaseURL string        `default:"http://localhost:8888/api"`
//	    Timeout time.Duration `default:"30s"`
//	}
//
// 已有值的字段保持不变；嵌套结构体和指向结构体的指针会被递归处理。
func ApplyDefaults(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer {
		return ErrTargetMustBePointer
	}
	if v.IsNil() {
		return ErrTargetIsNil
	}
	if v.Elem().Kind() != reflect.Struct {
		return ErrTargetMustBePointer
	}
	return applyStruct(v.Elem(), "", 0)
}

func applyStruct(v reflect.Value, path string, depth int) error {
	if depth >= maxDepth {
		return ErrMaxDepthExceeded
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		fieldPath := field.Name
		if path != "" {
			fieldPath = path + "." + field.Name
		}

		switch {
		case fv.Kind() == reflect.Struct:
			if err := applyStruct(fv, fieldPath, depth+1); err != nil {
				return err
			}
		case fv.Kind() == reflect.Pointer && fv.Type().Elem().Kind() == reflect.Struct:
			if fv.IsNil() {
				fv.Set(reflect.New(fv.Type().Elem()))
			}
			if err := applyStruct(fv.Elem(), fieldPath, depth+1); err != nil {
				return err
			}
		default:
			raw, ok := field.Tag.Lookup(tagName)
			if !ok || raw == "" || !fv.IsZero() {
				continue
			}
			if err := setValue(fv, raw); err != nil {
				return &FieldError{Path: fieldPath, Value: raw, Err: err}
			}
		}
	}
	return nil
}

func setValue(v reflect.Value, raw string) error {
	if v.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		v.SetInt(int64(d))
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.Slice:
		parts := strings.Split(raw, separator)
		slice := reflect.MakeSlice(v.Type(), len(parts), len(parts))
		for i, part := range parts {
			if err := setValue(slice.Index(i), strings.TrimSpace(part)); err != nil {
				return err
			}
		}
		v.Set(slice)
	default:
		return ErrUnsupportedType
	}
	return nil
}
