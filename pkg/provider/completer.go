package provider

import (
	"context"
	"strings"
)

// Completer is a chat-style model that reads page images and answers with
// text.
type Completer interface {
	Complete(ctx context.Context, messages []Message, options *CompleteOptions) (*Completion, error)
}

type Message struct {
	Role MessageRole

	Content MessageContent
}

func SystemMessage(text string) Message {
	return Message{
		Role: MessageRoleSystem,

		Content: MessageContent{
			TextContent(text),
		},
	}
}

// UserMessage builds a user turn from files followed by the prompt text.
func UserMessage(text string, files ...File) Message {
	var content MessageContent

	for _, f := range files {
		content = append(content, FileContent(f))
	}

	if text != "" {
		content = append(content, TextContent(text))
	}

	return Message{
		Role: MessageRoleUser,

		Content: content,
	}
}

func AssistantMessage(text string) Message {
	return Message{
		Role: MessageRoleAssistant,

		Content: MessageContent{
			TextContent(text),
		},
	}
}

type MessageContent []Content

func (c MessageContent) String() string {
	var parts []string

	for _, content := range c {
		if content.Text != "" {
			parts = append(parts, content.Text)
		}
	}

	return strings.Join(parts, "\n\n")
}

type Content struct {
	Text string

	File *File
}

func TextContent(val string) Content {
	return Content{
		Text: val,
	}
}

func FileContent(file File) Content {
	return Content{
		File: &file,
	}
}

type File struct {
	Name string

	Content     []byte
	ContentType string
}

type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

type CompleteOptions struct {
	MaxTokens   *int
	Temperature *float32
}

type Completion struct {
	ID    string
	Model string

	Reason CompletionReason

	Message *Message

	Usage *Usage
}

// Text returns the answer text, or an empty string if the model gave none.
func (c *Completion) Text() string {
	if c == nil || c.Message == nil {
		return ""
	}

	return c.Message.Content.String()
}

type CompletionReason string

const (
	CompletionReasonStop   CompletionReason = "stop"
	CompletionReasonLength CompletionReason = "length"
	CompletionReasonFilter CompletionReason = "filter"
)
