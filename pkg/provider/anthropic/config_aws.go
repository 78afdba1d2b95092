package anthropic

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// bedrockMiddleware rewrites Messages API calls into Bedrock invoke calls
// authenticated with a Bedrock API key.
func bedrockMiddleware(token string) option.Middleware {
	return func(r *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		if r.Body != nil {
			body, err := io.ReadAll(r.Body)

			if err != nil {
				return nil, err
			}

			r.Body.Close()

			body, err = rewriteBedrockRequest(r, body)

			if err != nil {
				return nil, err
			}

			reader := bytes.NewReader(body)

			r.Body = io.NopCloser(reader)
			r.ContentLength = int64(len(body))

			r.GetBody = func() (io.ReadCloser, error) {
				_, err := reader.Seek(0, io.SeekStart)
				return io.NopCloser(reader), err
			}
		}

		r.Header.Set("Authorization", "Bearer "+token)

		return next(r)
	}
}

func rewriteBedrockRequest(r *http.Request, body []byte) ([]byte, error) {
	var err error

	if !gjson.GetBytes(body, "anthropic_version").Exists() {
		if body, err = sjson.SetBytes(body, "anthropic_version", bedrock.DefaultVersion); err != nil {
			return nil, err
		}
	}

	if betas := r.Header.Values("anthropic-beta"); len(betas) > 0 {
		r.Header.Del("anthropic-beta")

		if body, err = sjson.SetBytes(body, "anthropic_beta", betas); err != nil {
			return nil, err
		}
	}

	if r.Method != http.MethodPost || !bedrock.DefaultEndpoints[r.URL.Path] {
		return body, nil
	}

	model := gjson.GetBytes(body, "model").String()

	method := "invoke"

	if gjson.GetBytes(body, "stream").Bool() {
		method = "invoke-with-response-stream"
	}

	body, _ = sjson.DeleteBytes(body, "model")
	body, _ = sjson.DeleteBytes(body, "stream")

	r.URL.Path = fmt.Sprintf("/model/%s/%s", model, method)
	r.URL.RawPath = fmt.Sprintf("/model/%s/%s", url.QueryEscape(model), method)

	return body, nil
}
