// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type credentials struct {
	Username string `validate:"required,username"`
	Password string `validate:"required,strong_password"`
}

func TestStrongPasswordValidation(t *testing.T) {
	valid := credentials{Username: "florist_1", Password: "Sup3rSecret!"}
	assert.NoError(t, ValidateStruct(valid))

	for name, password := range map[string]string{
		"too short":  "Ab1!",
		"no upper":   "sup3rsecret!",
		"no number":  "SuperSecret!",
		"no special": "Sup3rSecret",
	} {
		t.Run(name, func(t *testing.T) {
			invalid := credentials{Username: "florist_1", Password: password}
			assert.Error(t, ValidateStruct(invalid))
		})
	}
}

func TestUsernameValidation(t *testing.T) {
	for _, username := range []string{"ab", "has space", "đặng", "dash-ed"} {
		invalid := credentials{Username: username, Password: "Sup3rSecret!"}
		assert.Error(t, ValidateStruct(invalid), "username %q", username)
	}

	valid := credentials{Username: "Hoa_Shop_99", Password: "Sup3rSecret!"}
	assert.NoError(t, ValidateStruct(valid))
}

func TestValidationErrorsAreDescriptive(t *testing.T) {
	err := ValidateStruct(credentials{})
	assert.Error(t, err)

	details := GetValidationErrors(err)
	assert.Len(t, details, 2)
	assert.Equal(t, "username", details[0].Field)
	assert.Equal(t, "required", details[0].Tag)
}
