package forms

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	FullName string `form:"full_name" validate:"required,personname"`
	Email    string `form:"email" validate:"required,email"`
	Comment  string `form:"comment" validate:"required,min=4,words"`
	Rating   int    `form:"rating" validate:"min=1,max=5"`
}

func TestValidate_ReportsFormFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(&sample{FullName: "R2D2", Email: "nope", Comment: "1234", Rating: 9})
	require.Error(t, err)

	errs := Errors(err, Messages{
		"comment.words": "Comment cannot be only numbers",
		"rating":        "Rating must be between 1 and 5",
	})

	assert.Equal(t, "Invalid full name", errs["full_name"])
	assert.Equal(t, "Please enter a valid email", errs["email"])
	assert.Equal(t, "Comment cannot be only numbers", errs["comment"])
	assert.Equal(t, "Rating must be between 1 and 5", errs["rating"])
}

func TestValidate_Valid(t *testing.T) {
	err := New().Validate(&sample{FullName: "Asha Rao", Email: "asha@example.com", Comment: "Clean and quiet", Rating: 4})
	assert.NoError(t, err)
	assert.Empty(t, Errors(err, nil))
}

func TestErrors_FirstFailurePerField(t *testing.T) {
	err := New().Validate(&sample{Email: "asha@example.com", Comment: "", Rating: 3, FullName: "Asha"})

	errs := Errors(err, nil)
	assert.Equal(t, "Comment is required", errs["comment"])
	assert.Len(t, errs, 1)
}

func TestErrors_NonValidationError(t *testing.T) {
	errs := Errors(errors.New("boom"), nil)
	assert.Equal(t, "boom", errs[""])
}
