package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// custom validation tags & texts
const (
	usernameCharsTag  = "alphanum_"
	usernameCharsText = "only alphanumeric characters and underscores are allowed"

	requiredText = "this field is required"
)

var usernameCharsRegex = regexp.MustCompile(`^[\w\s]+$`)

// InitValidators wires up the shared validator instance: English default
// translations, JSON field names in error messages and the app-wide custom
// tags. Domain packages register their own tags on top of this.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// report JSON tag names, not Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(usernameCharsTag, func(fl validator.FieldLevel) bool {
		return usernameCharsRegex.MatchString(fl.Field().String())
	})
	RegisterCustomTranslation(validate, translator, usernameCharsTag, usernameCharsText)

	// shorter than the library's default wording
	for _, tag := range []string{"required", "required_with"} {
		RegisterCustomTranslation(validate, translator, tag, requiredText, true)
	}
}

// RegisterCustomTranslation binds a fixed message to a validation tag.
// Pass override to replace a translation the library already ships.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}
