// Package captcha implements the arithmetic challenge shown after
// repeated failed logins. With operands in [1,9] there are only 81
// possible challenges; this is a deliberate bot-friction speed bump,
// not a security boundary.
package captcha

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Challenge is a pair of operands for an addition question. The caller
// (UI/session layer) holds the challenge between issuance and answer
// submission; nothing is persisted here.
type Challenge struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Generate draws both operands uniformly from [1,9].
func Generate() Challenge {
	return Challenge{
		A: rand.IntN(9) + 1,
		B: rand.IntN(9) + 1,
	}
}

// Text renders the human-readable question.
func (c Challenge) Text() string {
	return fmt.Sprintf("What is %d + %d?", c.A, c.B)
}

// ExpectedAnswer returns the sum the answer must match.
func (c Challenge) ExpectedAnswer() int {
	return c.A + c.B
}

// Validate parses the answer as an integer after trimming surrounding
// whitespace and reports whether it equals the expected sum. Empty or
// non-numeric input is simply wrong, never an error.
func (c Challenge) Validate(answer string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return false
	}
	return n == c.ExpectedAnswer()
}
