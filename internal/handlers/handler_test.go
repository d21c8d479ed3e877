package handlers

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name     string `json:"name" binding:"required,personname"`
	Password string `json:"password" binding:"required,password"`
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators())

	assert.NoError(t, binding.Validator.ValidateStruct(signup{Name: "Alice 2", Password: "Secret#123"}))

	tests := []struct {
		name  string
		input signup
		field string
		tag   string
	}{
		{"weak password", signup{Name: "Alice", Password: "password"}, "password", "password"},
		{"punctuation in name", signup{Name: "Al!ce", Password: "Secret#123"}, "name", "personname"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(tt.input)
			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field())
			assert.Equal(t, tt.tag, verrs[0].Tag())
		})
	}
}
