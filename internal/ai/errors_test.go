package ai

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func errResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestDecodeProviderError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "nested object", status: 400, body: `{"error":{"message":"invalid model"}}`, want: "invalid model"},
		{name: "plain string", status: 429, body: `{"error":"rate limit exceeded"}`, want: "rate limit exceeded"},
		{name: "empty body", status: 502, body: "", want: "provider returned status 502"},
		{name: "garbage body", status: 500, body: "<html>oops</html>", want: "provider returned status 500"},
		{name: "blank message", status: 403, body: `{"error":{"message":"  "}}`, want: "provider returned status 403"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := decodeProviderError(errResponse(tt.status, tt.body))
			assert.Equal(t, tt.status, perr.Status)
			assert.Equal(t, tt.want, perr.Message)
			assert.Equal(t, tt.want, perr.Error())
		})
	}
}
