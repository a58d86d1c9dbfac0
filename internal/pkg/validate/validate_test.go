package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string  `json:"email" validate:"required,email"`
	Code  string  `json:"code" validate:"required,len=6,numeric"`
	Token *string `json:"token" validate:"omitempty,uuid4"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(&sample{Email: "a@muc.edu.eg", Code: "123456"}))
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	bad := "not-a-uuid"
	err := Struct(&sample{Email: "nope", Code: "12ab", Token: &bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'email' failed 'email'")
	assert.Contains(t, err.Error(), "field 'code' failed 'len'")
	assert.Contains(t, err.Error(), "field 'token' failed 'uuid4'")
}
