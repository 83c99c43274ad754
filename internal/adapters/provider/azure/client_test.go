package azure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jbctechsolutions/parley/internal/domain/errors"
)

func TestNewClient(t *testing.T) {
	config := DefaultConfig("https://myresource.openai.azure.com", "test-api-key", "gpt-4")

	client := NewClient(config)

	if client == nil {
		t.Fatal("expected non-nil client")
	}
	if client.config.APIKey != "test-api-key" {
		t.Errorf("expected API key 'test-api-key', got %q", client.config.APIKey)
	}
	if client.config.APIVersion != DefaultAPIVersion {
		t.Errorf("expected default API version, got %q", client.config.APIVersion)
	}
}

func TestNewClient_FillsAPIVersion(t *testing.T) {
	client := NewClient(Config{Endpoint: "https://x", APIKey: "k", Deployment: "gpt-4"})
	if client.config.APIVersion != DefaultAPIVersion {
		t.Errorf("empty APIVersion should default to %q, got %q", DefaultAPIVersion, client.config.APIVersion)
	}
}

func TestClient_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/openai/deployments/gpt-4/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if v := r.URL.Query().Get("api-version"); v != DefaultAPIVersion {
			t.Errorf("expected api-version %q, got %q", DefaultAPIVersion, v)
		}
		if key := r.Header.Get("api-key"); key != "test-api-key" {
			t.Errorf("expected api-key header, got %q", key)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %q", ct)
		}

		var req ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Messages) != 2 {
			t.Errorf("expected 2 messages, got %d", len(req.Messages))
		}

		resp := ChatCompletionResponse{
			ID:      "chatcmpl-123",
			Object:  "chat.completion",
			Created: time.Now().Unix(),
			Model:   "gpt-4",
			Choices: []Choice{
				{
					Index: 0,
					Message: Message{
						Role:    RoleAssistant,
						Content: "Hello! How can I help you today?",
					},
					FinishReason: FinishReasonStop,
				},
			},
			Usage: Usage{
				PromptTokens:     10,
				CompletionTokens: 8,
				TotalTokens:      18,
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	config := DefaultConfig(server.URL, "test-api-key", "gpt-4")
	client := NewClient(config)

	req := &ChatCompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "You are helpful."},
			{Role: RoleUser, Content: "Hi"},
		},
	}

	resp, err := client.Chat(context.Background(), "gpt-4", req)
	if err != nil {
		t.Fatalf("Chat() error: %v", err)
	}
	if resp.Choices[0].Message.Content != "Hello! How can I help you today?" {
		t.Errorf("unexpected content: %q", resp.Choices[0].Message.Content)
	}
	if resp.Usage.TotalTokens != 18 {
		t.Errorf("TotalTokens = %d, want 18", resp.Usage.TotalTokens)
	}
}

func TestClient_Chat_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error: ErrorInfo{Message: "invalid api key", Code: "401"},
		})
	}))
	defer server.Close()

	client := NewClient(DefaultConfig(server.URL, "bad-key", "gpt-4"))

	_, err := client.Chat(context.Background(), "gpt-4", &ChatCompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "Hi"}},
	})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}

	var perr *errors.ParleyError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParleyError, got %T", err)
	}
	if perr.Code != errors.CodeConfig {
		t.Errorf("Code = %v, want CONFIG for auth failure", perr.Code)
	}
	if !strings.Contains(perr.Message, "invalid api key") {
		t.Errorf("error message should carry provider detail, got %q", perr.Message)
	}
}

func TestClient_Chat_MalformedErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := NewClient(DefaultConfig(server.URL, "key", "gpt-4"))

	_, err := client.Chat(context.Background(), "gpt-4", &ChatCompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "Hi"}},
	})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "upstream exploded") {
		t.Errorf("raw body should surface when error JSON is unparseable, got %v", err)
	}
}
