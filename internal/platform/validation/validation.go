// Package validation registers the custom binding validators the DTOs rely on.
package validation

import (
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators installs the project's validators on gin's
// binding engine. Call once at startup before routes are served.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("intlphone", intlPhone)
	_ = v.RegisterValidation("strongpwd", strongPassword)
}

// intlPhone accepts Senegalese international numbers: +221 followed by 8 or 9 digits.
func intlPhone(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) < 12 || len(s) > 13 {
		return false
	}
	if s[:4] != "+221" {
		return false
	}
	for _, r := range s[4:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// strongPassword requires at least 10 characters, an uppercase first letter,
// two lowercase letters and two non-alphanumeric characters.
func strongPassword(fl validator.FieldLevel) bool {
	s := []rune(fl.Field().String())
	if len(s) < 10 {
		return false
	}
	if !unicode.IsUpper(s[0]) {
		return false
	}
	var lower, special int
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower++
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			special++
		}
	}
	return lower >= 2 && special >= 2
}
