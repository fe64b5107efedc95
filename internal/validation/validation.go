// Package validation wraps go-playground/validator with English messages keyed
// by JSON field name, plus the custom tags used by timetable forms.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/example/school-timetable/internal/timetable"
)

// custom validation tags
const (
	NotBlankTag    = "notblank"
	ClockTag       = "clock"
	WholeNumberTag = "wholenumber"
	WeekdayTag     = "weekday"
)

// Validator checks struct tags and reports failures per field.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New builds a Validator with English translations and the custom tags registered.
func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// report JSON names so messages line up with the form fields
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(NotBlankTag, notBlank)
	_ = validate.RegisterValidation(ClockTag, clock)
	_ = validate.RegisterValidation(WholeNumberTag, wholeNumber)
	_ = validate.RegisterValidation(WeekdayTag, weekday)

	v := &Validator{validate: validate, translator: translator}
	v.registerCustomTranslations(NotBlankTag, ClockTag, WholeNumberTag, WeekdayTag)
	return v
}

// the default translations are already registered, so a noop register func is enough
func (v *Validator) registerCustomTranslations(tags ...string) {
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range tags {
		_ = v.validate.RegisterTranslation(tag, v.translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case NotBlankTag:
		return fe.Field() + " cannot be blank"
	case ClockTag:
		return fe.Field() + " must be a time in HH:MM format"
	case WholeNumberTag:
		return fe.Field() + " must be a whole number"
	case WeekdayTag:
		return fe.Field() + " must be a day from Monday to Saturday"
	default:
		return fe.Field() + " is invalid"
	}
}

// Struct validates s and returns failures keyed by the field's JSON path, or
// nil when s is valid. Errors other than field failures are returned as err.
func (v *Validator) Struct(s any) (map[string]string, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}
	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fieldPath(fe.Namespace())] = fe.Translate(v.translator)
	}
	return out, nil
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if idx := strings.IndexByte(namespace, '.'); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func clock(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := timetable.ParseClock(str)
	return err == nil
}

func wholeNumber(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	str = strings.TrimSpace(str)
	if str == "" {
		return false
	}
	for _, r := range str {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func weekday(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := timetable.ParseWeekday(str)
	return err == nil
}
