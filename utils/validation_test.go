package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Name  string `validate:"required"`
	Count int    `validate:"gte=0,lte=100"`
	Mode  string `validate:"omitempty,oneof=fast slow"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		err := ValidateStruct(&sampleInput{Name: "x", Count: 5, Mode: "fast"})
		assert.NoError(t, err)
	})

	t.Run("missing required field", func(t *testing.T) {
		err := ValidateStruct(&sampleInput{Count: 5})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		assert.Contains(t, fields["Name"], "required")
	})

	t.Run("out of range", func(t *testing.T) {
		err := ValidateStruct(&sampleInput{Name: "x", Count: 101})
		require.Error(t, err)
		assert.Contains(t, GetValidationFields(err)["Count"], "less than or equal to 100")
	})

	t.Run("invalid enum", func(t *testing.T) {
		err := ValidateStruct(&sampleInput{Name: "x", Mode: "medium"})
		require.Error(t, err)
		assert.Contains(t, GetValidationFields(err)["Mode"], "one of")
	})
}

func TestIsValidationError(t *testing.T) {
	assert.False(t, IsValidationError(errors.New("plain")))
	assert.Nil(t, GetValidationFields(errors.New("plain")))

	err := ValidateStruct(&sampleInput{})
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "Validation failed", err.Error())
}
