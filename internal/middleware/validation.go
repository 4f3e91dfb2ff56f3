package middleware

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Optional +, then 10 to 15 digits once separators are stripped.
var (
	phonePattern   = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	phoneSeparator = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// RegisterValidators installs the custom binding validators and makes
// validation errors report JSON field names instead of Go field names.
// Call once before the router starts serving.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(phoneSeparator.Replace(fl.Field().String()))
	})

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}
