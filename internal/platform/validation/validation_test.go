package validation_test

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/sunubank/bankapi/internal/platform/validation"
)

type phoneProbe struct {
	Phone string `binding:"intlphone"`
}

type pwdProbe struct {
	Password string `binding:"strongpwd"`
}

func engine(t *testing.T) *validator.Validate {
	t.Helper()
	validation.RegisterCustomValidators()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	return v
}

func TestIntlPhone(t *testing.T) {
	v := engine(t)

	assert.NoError(t, v.Struct(phoneProbe{Phone: "+221771234567"}))
	assert.NoError(t, v.Struct(phoneProbe{Phone: "+22177123456"}))
	assert.Error(t, v.Struct(phoneProbe{Phone: "+33771234567"}))
	assert.Error(t, v.Struct(phoneProbe{Phone: "+2217712345"}))
	assert.Error(t, v.Struct(phoneProbe{Phone: "+221771234a67"}))
	assert.Error(t, v.Struct(phoneProbe{Phone: "771234567"}))
}

func TestStrongPassword(t *testing.T) {
	v := engine(t)

	assert.NoError(t, v.Struct(pwdProbe{Password: "Abcdefgh!!"}))
	assert.Error(t, v.Struct(pwdProbe{Password: "short!!Ab"}))       // too short
	assert.Error(t, v.Struct(pwdProbe{Password: "abcdefghi!!"}))     // no leading uppercase
	assert.Error(t, v.Struct(pwdProbe{Password: "ABCDEFGHIJ!!"}))    // not enough lowercase
	assert.Error(t, v.Struct(pwdProbe{Password: "Abcdefghijkl"}))    // no specials
	assert.NoError(t, v.Struct(pwdProbe{Password: "Passw0rd#+extra"}))
}
