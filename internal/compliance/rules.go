package compliance

import "fmt"

const (
	DefaultMinWords           = 2000
	DefaultRequiredParagraphs = 8
)

// Rules holds the structural thresholds a document is checked against.
type Rules struct {
	MinWords           int `json:"minWords"`
	RequiredParagraphs int `json:"requiredParagraphs"`
}

// DefaultRules returns the standard scientific-article thresholds.
func DefaultRules() Rules {
	return Rules{MinWords: DefaultMinWords, RequiredParagraphs: DefaultRequiredParagraphs}
}

func (r Rules) validate() error {
	if r.MinWords < 0 {
		return fmt.Errorf("%w: min words must be non-negative, got %d", ErrInvalidInput, r.MinWords)
	}
	if r.RequiredParagraphs < 0 {
		return fmt.Errorf("%w: required paragraphs must be non-negative, got %d", ErrInvalidInput, r.RequiredParagraphs)
	}
	return nil
}
