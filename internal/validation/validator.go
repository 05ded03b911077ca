// Package validation はgo-playground/validatorによる入力検証を提供する。
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// instance は共有のvalidatorを返す。カスタムタグは初回に登録する。
func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// 空白のみの文字列を未入力として扱う
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = validate.RegisterValidation("printable", func(fl validator.FieldLevel) bool {
			for _, r := range fl.Field().String() {
				if !unicode.IsPrint(r) {
					return false
				}
			}
			return true
		})
	})
	return validate
}

// Struct は構造体のvalidateタグを検証し、失敗時は全フィールドの理由を連結したエラーを返す。
func Struct(v any) error {
	if err := instance().Struct(v); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// fieldError は1件の検証エラーを読みやすいメッセージに変換する。
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "printable":
		return field + " must contain only printable characters"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
