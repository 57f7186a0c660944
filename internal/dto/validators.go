package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

// RegisterCustomValidators installs the binding validators this package's
// tags rely on. Call once at startup before serving requests.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	// currencycode: three letters, ISO 4217 convention. Case is accepted here
	// because the Money constructor normalizes to uppercase.
	return v.RegisterValidation("currencycode", func(fl validator.FieldLevel) bool {
		return currencyCodePattern.MatchString(fl.Field().String())
	})
}
