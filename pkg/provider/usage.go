package provider

import (
	"fmt"
)

type Usage struct {
	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`
	TotalTokens  int `json:"total_tokens,omitempty"`

	// reported by document OCR services
	Pages         int `json:"pages,omitempty"`
	DocumentBytes int `json:"document_bytes,omitempty"`
}

// Add sums other into u. A missing total is derived from input and output.
func (u *Usage) Add(other *Usage) {
	if other == nil {
		return
	}

	total := other.TotalTokens

	if total == 0 {
		total = other.InputTokens + other.OutputTokens
	}

	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += total

	u.Pages += other.Pages
	u.DocumentBytes += other.DocumentBytes
}

func (u *Usage) IsZero() bool {
	return u == nil || *u == Usage{}
}

// Error is an upstream failure with the status reported by the service.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}

	return fmt.Sprintf("provider error (%d): %s", e.StatusCode, e.Message)
}
