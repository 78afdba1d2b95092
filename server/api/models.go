package api

// Conversion is the JSON form of a finished conversion.
type Conversion struct {
	ID    string `json:"id"`
	Model string `json:"model"`

	Markdown string `json:"markdown"`

	Pages  int `json:"pages"`
	Images int `json:"images"`

	Usage *Usage `json:"usage,omitempty"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`
	TotalTokens  int `json:"total_tokens,omitempty"`

	Pages         int `json:"pages,omitempty"`
	DocumentBytes int `json:"document_bytes,omitempty"`
}

type Model struct {
	ID     string `json:"id"`
	Object string `json:"object"`

	OwnedBy string `json:"owned_by,omitempty"`
}

type ModelList struct {
	Object string `json:"object"`

	Models []Model `json:"data"`
}

type ErrorResponse struct {
	Error Error `json:"error"`
}

type Error struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

const (
	HeaderImageCount = "X-Image-Count"
	HeaderPageCount  = "X-Page-Count"

	HeaderInputTokens  = "X-Usage-Input-Tokens"
	HeaderOutputTokens = "X-Usage-Output-Tokens"
	HeaderTotalTokens  = "X-Usage-Total-Tokens"
)
