package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// PlaygroundV10 Validator implementation using go-playground
type PlaygroundV10 struct {
	core  *validator.Validate
	trans ut.Translator
}

var _ Validator = &PlaygroundV10{}

// NewValidator create a new Validator
func NewValidator() *PlaygroundV10 {
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New()
	en_translations.RegisterDefaultTranslations(validate, trans)
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			name = fld.Tag.Get("yaml")
			if name == "-" || name == "" {
				return ""
			}
		}
		return name
	})
	registerNotBlank(validate, trans)
	return &PlaygroundV10{
		core:  validate,
		trans: trans,
	}
}

// notblank fails on strings made of white spaces only
func registerNotBlank(validate *validator.Validate, trans ut.Translator) {
	validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.String {
			return true
		}
		return strings.TrimSpace(field.String()) != ""
	})
	validate.RegisterTranslation("notblank", trans, func(ut ut.Translator) error {
		return ut.Add("notblank", "{0} must not be blank", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("notblank", fe.Field())
		return t
	})
}

// Struct validate struct
func (v PlaygroundV10) Struct(s interface{}) []*FieldError {
	var result []*FieldError
	if err := v.core.Struct(s); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*FieldError{NewFieldError("", err.Error())}
		}
		for _, item := range errs {
			result = append(result, NewFieldError(trimNamespace(item.Namespace()), item.Translate(v.trans)))
		}
		return result
	}
	return nil
}

// AllEmpty check if all fields are empty
//
// names and fields have one to one relationship respect to the order
func (v PlaygroundV10) AllEmpty(names []string, fields ...interface{}) *FieldError {
	if len(names) != len(fields) {
		panic(fmt.Errorf("number of name: %d, fields: %d", len(names), len(fields)))
	}

	validate := v.core
	for _, s := range fields {
		if err := validate.Var(s, "required"); err == nil {
			return nil
		}
	}
	return NewFieldError(strings.Join(names, ","), "One of the fields should not be empty")
}

// trimNamespace drops the top level struct name, eg.
// BatchToggleRequest.operations[1].lessonNumber -> operations[1].lessonNumber
func trimNamespace(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
