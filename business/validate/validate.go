// Package validate wraps go-playground/validator for checking incoming
// API payloads against their struct tags.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	check      = validator.New()
	translator ut.Translator
)

func init() {
	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(check, translator); err != nil {
		panic(err)
	}
}

// FieldErrors holds one message per struct field that failed validation.
type FieldErrors map[string]string

// Error satisfies the error interface by joining field messages.
func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(parts, ", ")
}

// Check runs struct tag validation against val, returning a FieldErrors
// error describing every failing field, or nil if val is valid.
func Check(val any) error {
	if err := check.Struct(val); err != nil {
		var verrors validator.ValidationErrors
		if !errors.As(err, &verrors) {
			return err
		}

		fields := FieldErrors{}
		for _, field := range verrors {
			fields[field.Field()] = field.Translate(translator)
		}
		return fields
	}
	return nil
}
