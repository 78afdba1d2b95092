package mcp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/adrianliechti/scanpress/config"
	"github.com/adrianliechti/scanpress/pkg/converter"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

type Handler struct {
	*config.Config

	http.Handler
}

type ConvertInput struct {
	Name    string `json:"name" jsonschema:"file name including extension, used to detect the file type"`
	Content string `json:"content" jsonschema:"base64 encoded PDF or image"`

	Model string `json:"model,omitempty" jsonschema:"OCR model to use, defaults to the configured model"`
}

type ConvertOutput struct {
	Model    string `json:"model"`
	Markdown string `json:"markdown"`

	Pages  int `json:"pages"`
	Images int `json:"images"`
}

func New(cfg *config.Config) *Handler {
	h := &Handler{
		Config: cfg,
	}

	server := sdk.NewServer(&sdk.Implementation{
		Name:    "scanpress",
		Version: "1.0.0",
	}, nil)

	sdk.AddTool(server, &sdk.Tool{
		Name:        "convert_document",
		Description: "Runs OCR on a scanned PDF or image and returns the recognized text as markdown.",
	}, h.convertDocument)

	h.Handler = sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server {
		return server
	}, nil)

	return h
}

func (h *Handler) convertDocument(ctx context.Context, req *sdk.CallToolRequest, input ConvertInput) (*sdk.CallToolResult, ConvertOutput, error) {
	if input.Content == "" {
		return nil, ConvertOutput{}, errors.New("content is required")
	}

	data, err := base64.StdEncoding.DecodeString(input.Content)

	if err != nil {
		return nil, ConvertOutput{}, fmt.Errorf("invalid content: %w", err)
	}

	c, err := h.NewConverter(input.Model)

	if err != nil {
		return nil, ConvertOutput{}, err
	}

	result, err := c.Convert(ctx, converter.File{
		Name:    input.Name,
		Content: data,
	})

	if err != nil {
		return nil, ConvertOutput{}, err
	}

	output := ConvertOutput{
		Model:    result.Model,
		Markdown: result.Markdown,

		Pages:  result.Pages,
		Images: len(result.Images),
	}

	return &sdk.CallToolResult{
		Content: []sdk.Content{
			&sdk.TextContent{Text: result.Markdown},
		},
	}, output, nil
}
