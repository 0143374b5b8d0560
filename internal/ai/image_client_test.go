package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"CharacterChat/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testGateway(t *testing.T, baseURL string) *Gateway {
	t.Helper()
	cfg := config.Defaults().AI
	cfg.APIKey = "test-key"
	cfg.BaseURL = baseURL
	gw, err := NewGateway(cfg, zap.NewNop().Sugar())
	require.NoError(t, err)
	return gw
}

func TestNewGatewayRequiresAPIKey(t *testing.T) {
	cfg := config.Defaults().AI
	cfg.APIKey = "  "
	_, err := NewGateway(cfg, zap.NewNop().Sugar())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestImageGenerate(t *testing.T) {
	imgBytes := []byte("png-payload")

	var got imageRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/image/generate", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"images": []string{base64.StdEncoding.EncodeToString(imgBytes)},
		})
	}))
	defer ts.Close()

	gw := testGateway(t, ts.URL)
	data, err := gw.Image.Generate(context.Background(), "рыжая лиса", ImageOptions{
		Model: "venice-sd35", Width: 1024, Height: 1024, Steps: 20, CFGScale: 7.0, Format: "png",
	})

	require.NoError(t, err)
	assert.Equal(t, imgBytes, data)
	assert.Equal(t, "рыжая лиса", got.Prompt)
	assert.Equal(t, "venice-sd35", got.Model)
	assert.Equal(t, 20, got.Steps)
	assert.Equal(t, 7.0, got.CFGScale)
	assert.Equal(t, 1, got.Variants)
}

func TestImageGenerateDataURLPrefixStripped(t *testing.T) {
	imgBytes := []byte("png-payload")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"images": []string{"data:image/png;base64," + base64.StdEncoding.EncodeToString(imgBytes)},
		})
	}))
	defer ts.Close()

	gw := testGateway(t, ts.URL)
	data, err := gw.Image.Generate(context.Background(), "лиса", ImageOptions{})

	require.NoError(t, err)
	assert.Equal(t, imgBytes, data)
}

func TestImageGenerateNoImages(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"images": []string{}})
	}))
	defer ts.Close()

	gw := testGateway(t, ts.URL)
	_, err := gw.Image.Generate(context.Background(), "лиса", ImageOptions{})

	assert.ErrorIs(t, err, ErrNoImage)
}

func TestImageGenerateProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid model"}}`))
	}))
	defer ts.Close()

	gw := testGateway(t, ts.URL)
	_, err := gw.Image.Generate(context.Background(), "лиса", ImageOptions{})

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusBadRequest, perr.Status)
	assert.Equal(t, "invalid model", perr.Message)
}

func TestImageGenerateUnknownFormatFallsBackToPNG(t *testing.T) {
	var got imageRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{"images": []string{"cGF5bG9hZA=="}})
	}))
	defer ts.Close()

	gw := testGateway(t, ts.URL)
	_, err := gw.Image.Generate(context.Background(), "лиса", ImageOptions{Format: "bmp"})

	require.NoError(t, err)
	assert.Equal(t, "png", got.Format)
}

func TestImageGenerateEmptyPrompt(t *testing.T) {
	gw := testGateway(t, "http://127.0.0.1:0")
	_, err := gw.Image.Generate(context.Background(), "  ", ImageOptions{})
	assert.Error(t, err)
}

func TestImageEdit(t *testing.T) {
	var got imageRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/image/edit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{"images": []string{"cGF5bG9hZA=="}})
	}))
	defer ts.Close()

	gw := testGateway(t, ts.URL)
	_, err := gw.Image.Edit(context.Background(), "добавь шляпу", "https://example.com/ref.png", ImageOptions{})

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/ref.png", got.Image)
}

func TestImageEditRequiresReferenceURL(t *testing.T) {
	gw := testGateway(t, "http://127.0.0.1:0")
	_, err := gw.Image.Edit(context.Background(), "добавь шляпу", "", ImageOptions{})
	assert.Error(t, err)
}
