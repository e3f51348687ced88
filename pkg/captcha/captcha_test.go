package captcha

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		c := Generate()
		assert.GreaterOrEqual(t, c.A, 1)
		assert.LessOrEqual(t, c.A, 9)
		assert.GreaterOrEqual(t, c.B, 1)
		assert.LessOrEqual(t, c.B, 9)
	}
}

func TestText(t *testing.T) {
	c := Challenge{A: 3, B: 4}
	assert.Equal(t, "What is 3 + 4?", c.Text())
}

func TestValidateCorrectSums(t *testing.T) {
	for a := 1; a <= 9; a++ {
		for b := 1; b <= 9; b++ {
			c := Challenge{A: a, B: b}
			assert.True(t, c.Validate(strconv.Itoa(a+b)), "a=%d b=%d", a, b)
		}
	}
}

func TestValidate(t *testing.T) {
	c := Challenge{A: 3, B: 4}

	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{name: "correct", answer: "7", want: true},
		{name: "correct with surrounding whitespace", answer: "  7  ", want: true},
		{name: "wrong sum", answer: "8", want: false},
		{name: "non-numeric", answer: "abc", want: false},
		{name: "empty", answer: "", want: false},
		{name: "whitespace only", answer: "   ", want: false},
		{name: "trailing garbage", answer: "7x", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Validate(tt.answer))
		})
	}
}

func TestValidateBoundaries(t *testing.T) {
	low := Challenge{A: 1, B: 1}
	assert.True(t, low.Validate("2"))

	high := Challenge{A: 9, B: 9}
	assert.True(t, high.Validate("18"))
}

func TestExpectedAnswer(t *testing.T) {
	c := Challenge{A: 5, B: 6}
	assert.Equal(t, 11, c.ExpectedAnswer())
	assert.True(t, c.Validate(fmt.Sprintf("%d", c.ExpectedAnswer())))
}
