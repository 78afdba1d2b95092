package anthropic

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type Config struct {
	url string

	token string
	model string

	client *http.Client
}

type Option func(*Config)

func WithClient(client *http.Client) Option {
	return func(c *Config) {
		c.client = client
	}
}

func WithToken(token string) Option {
	return func(c *Config) {
		c.token = token
	}
}

// Bedrock endpoints are detected by host; they accept either a Bedrock API
// key or the default AWS credential chain.
func (cfg *Config) isBedrock() bool {
	return strings.Contains(cfg.url, "amazonaws.com")
}

func (cfg *Config) Options() []option.RequestOption {
	var options []option.RequestOption

	switch {
	case cfg.isBedrock():
		options = cfg.bedrockOptions()

	default:
		url := cfg.url

		if url == "" {
			url = "https://api.anthropic.com/"
		}

		options = append(options, option.WithBaseURL(strings.TrimRight(url, "/")+"/"))

		if cfg.token != "" {
			options = append(options, option.WithAPIKey(cfg.token))
		}
	}

	if cfg.client != nil {
		options = append(options, option.WithHTTPClient(cfg.client))
	}

	return options
}

func (cfg *Config) bedrockOptions() []option.RequestOption {
	token := cfg.token

	if token == "" {
		token = os.Getenv("AWS_BEARER_TOKEN_BEDROCK")
	}

	if token == "" {
		return []option.RequestOption{
			bedrock.WithLoadDefaultConfig(context.Background()),
		}
	}

	return []option.RequestOption{
		option.WithBaseURL(cfg.url),
		option.WithMiddleware(bedrockMiddleware(token)),
	}
}
