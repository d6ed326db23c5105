package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViolations(t *testing.T) {
	v := Violations{}
	Required("name", "  ", v)
	Email("email", "not-an-email", v)
	Email("contact", "", v)
	MinLength("password", "abc", 6, v)
	PositiveFloat("bill", 0, v)
	RangeFloat("roof", 100, 200, 5000, v)
	OneOf("location", false, v)

	assert.False(t, v.Empty())
	assert.Equal(t, "required", v["name"])
	assert.Equal(t, "invalid_email", v["email"])
	assert.Equal(t, "required", v["contact"])
	assert.Equal(t, "min_length_6", v["password"])
	assert.Equal(t, "must_be_positive", v["bill"])
	assert.Equal(t, "out_of_range", v["roof"])
	assert.Equal(t, "invalid_choice", v["location"])
}

func TestViolations_ValidInput(t *testing.T) {
	v := Violations{}
	Required("name", "Asha", v)
	Email("email", "asha@example.in", v)
	MinLength("password", "secret1", 6, v)
	RangeFloat("roof", 500, 200, 5000, v)
	OneOf("location", true, v)
	assert.True(t, v.Empty())
}

func TestViolations_ErrorIsSorted(t *testing.T) {
	v := Violations{"phone": "required", "email": "required"}
	assert.Equal(t, "email: required; phone: required", v.Error())
}

func TestEmail_RejectsDisplayName(t *testing.T) {
	v := Violations{}
	Email("email", "Asha <asha@example.in>", v)
	assert.Equal(t, "invalid_email", v["email"])
}
