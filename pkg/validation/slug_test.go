package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillora/skillora-server/pkg/validation"
)

func TestValidEmail(t *testing.T) {
	assert.True(t, validation.ValidEmail("ada@example.com"))
	assert.True(t, validation.ValidEmail(" ada@example.com "))
	assert.False(t, validation.ValidEmail("ada@example"))
	assert.False(t, validation.ValidEmail("ada example@test.com"))
	assert.False(t, validation.ValidEmail(""))
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Go Fundamentals":        "go-fundamentals",
		"  Spaced   Out  ":       "spaced-out",
		"C++ & Rust, Together!!": "c-rust-together",
		"already-a-slug":         "already-a-slug",
		"ALL CAPS":               "all-caps",
	}

	for input, want := range cases {
		assert.Equal(t, want, validation.Slugify(input), input)
	}
}
