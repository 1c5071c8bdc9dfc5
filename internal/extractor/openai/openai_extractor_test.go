package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invodex/internal/config"
	"invodex/internal/extractor"
	"invodex/internal/extractor/openai"
	"invodex/internal/port"
)

const sampleInvoiceJSON = `{
	"invoice_number": "INV-2024-003",
	"customer_name": "Initech",
	"items": [
		{"description": "TPS report", "quantity": 1, "unit_price": 42, "total": 42}
	],
	"subtotal": 42,
	"tax_rate": 0,
	"tax_amount": 0,
	"total_amount": 42
}`

func newTestExtractor(endpoint string) *openai.Extractor {
	return openai.NewExtractorWithEndpoint(&config.ExtractorProviderConfig{
		APIKey:       "test-key",
		DefaultModel: "gpt-4o-2024-11-20",
	}, endpoint)
}

func chatResponse(t *testing.T, w http.ResponseWriter, content, finishReason string) {
	t.Helper()
	resp := map[string]interface{}{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"choices": []map[string]interface{}{
			{
				"index": 0,
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": finishReason,
			},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func TestExtract_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-2024-11-20", body["model"])
		assert.InDelta(t, 0.1, body["temperature"].(float64), 1e-6)
		assert.Equal(t, float64(4000), body["max_tokens"])
		assert.Equal(t, "json_object", body["response_format"].(map[string]interface{})["type"])

		messages := body["messages"].([]interface{})
		require.Len(t, messages, 2)

		system := messages[0].(map[string]interface{})
		assert.Equal(t, "system", system["role"])
		assert.Contains(t, system["content"], "JSON")

		user := messages[1].(map[string]interface{})
		assert.Equal(t, "user", user["role"])
		parts := user["content"].([]interface{})
		require.Len(t, parts, 2)
		assert.Equal(t, "text", parts[0].(map[string]interface{})["type"])
		imgPart := parts[1].(map[string]interface{})
		assert.Equal(t, "image_url", imgPart["type"])
		imgURL := imgPart["image_url"].(map[string]interface{})
		assert.True(t, strings.HasPrefix(imgURL["url"].(string), "data:application/pdf;base64,"))
		assert.Equal(t, "high", imgURL["detail"])

		chatResponse(t, w, sampleInvoiceJSON, "stop")
	}))
	defer server.Close()

	e := newTestExtractor(server.URL + "/v1")
	inv, err := e.Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("%PDF-1.4 fake"),
		ContentType: "application/pdf",
		Filename:    "invoice.pdf",
	})

	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, "INV-2024-003", inv.InvoiceNumber)
	assert.Equal(t, "Initech", inv.CustomerName)
	assert.InDelta(t, 42.0, inv.TotalAmount, 1e-9)
}

func TestExtract_UnsupportedContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called for unsupported content type")
	}))
	defer server.Close()

	e := newTestExtractor(server.URL + "/v1")
	inv, err := e.Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("BM fake bitmap"),
		ContentType: "image/bmp",
	})

	assert.Nil(t, inv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type")
}

func TestExtract_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Rate limit exceeded", "type": "requests"}}`))
	}))
	defer server.Close()

	e := newTestExtractor(server.URL + "/v1")
	inv, err := e.Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("fake"),
		ContentType: "image/png",
	})

	assert.Nil(t, inv)
	var rlErr *extractor.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "openai", rlErr.Provider)
	assert.Equal(t, 60*time.Second, rlErr.RetryAfter)
}

func TestExtract_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "server error", "type": "server_error"}}`))
	}))
	defer server.Close()

	e := newTestExtractor(server.URL + "/v1")
	inv, err := e.Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("fake"),
		ContentType: "image/png",
	})

	assert.Nil(t, inv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calling openai API")

	var rlErr *extractor.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestExtract_TruncatedOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatResponse(t, w, `{"invoice_number": "INV-`, "length")
	}))
	defer server.Close()

	e := newTestExtractor(server.URL + "/v1")
	inv, err := e.Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("fake"),
		ContentType: "application/pdf",
	})

	assert.Nil(t, inv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

func TestExtract_MalformedInvoiceJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatResponse(t, w, "not valid json at all", "stop")
	}))
	defer server.Close()

	e := newTestExtractor(server.URL + "/v1")
	inv, err := e.Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("fake"),
		ContentType: "application/pdf",
	})

	assert.Nil(t, inv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing LLM JSON output")
}
