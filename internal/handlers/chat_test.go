package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/codenest-dev/codenest/internal/services"
)

type capturedContent struct {
	Role  string `json:"role"`
	Parts []struct {
		Text string `json:"text"`
	} `json:"parts"`
}

type capturedRequest struct {
	SystemInstruction *capturedContent  `json:"systemInstruction"`
	Contents          []capturedContent `json:"contents"`
}

// newMockGemini returns a mock upstream that records every request and
// answers with a single candidate reply.
func newMockGemini(t *testing.T, reply string) (*httptest.Server, *int64, *capturedRequest) {
	t.Helper()

	var calls int64
	captured := &capturedRequest{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)

		if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
			t.Errorf("Failed to decode upstream request: %v", err)
		}

		response := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]string{{"text": reply}},
				}},
			},
		}

		json.NewEncoder(w).Encode(response)
	}))

	t.Cleanup(server.Close)

	return server, &calls, captured
}

func chatToken(t *testing.T) string {
	t.Helper()
	return accessToken(t, createTestUser(t, "chatter@rdu.edu.tr", "Chat", "Ter"))
}

func TestChatUnconfiguredClientIs503WithoutNetworkCall(t *testing.T) {
	r, _ := setupTest(t)

	server, calls, _ := newMockGemini(t, "never used")
	_ = server // the nil-client handler must never reach any upstream

	token := chatToken(t)

	for i := 0; i < 3; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/chat/gemini", map[string]interface{}{
			"message": "hello",
		}, token)

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("Expected 503, got %d: %s", w.Code, w.Body.String())
		}
	}

	if atomic.LoadInt64(calls) != 0 {
		t.Errorf("Expected zero upstream calls, got %d", *calls)
	}
}

func TestChatEmptyMessageIs400WithoutUpstreamCall(t *testing.T) {
	_, media := setupTest(t)

	server, calls, _ := newMockGemini(t, "never used")
	client := services.NewGeminiClient("test-key", "").WithBaseURL(server.URL)
	r := newChatRouter(t, client, media)

	w := doJSON(t, r, http.MethodPost, "/api/chat/gemini", map[string]interface{}{
		"message": "",
	}, chatToken(t))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}

	if atomic.LoadInt64(calls) != 0 {
		t.Errorf("Expected zero upstream calls, got %d", *calls)
	}
}

func TestChatRetrievalAugmentsPrompt(t *testing.T) {
	_, media := setupTest(t)

	server, _, captured := newMockGemini(t, "Here you go.")
	client := services.NewGeminiClient("test-key", "").WithBaseURL(server.URL)
	r := newChatRouter(t, client, media)

	w := doJSON(t, r, http.MethodPost, "/api/chat/gemini", map[string]interface{}{
		"message": "What is the policy on plagiarism?",
	}, chatToken(t))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if len(captured.Contents) != 1 {
		t.Fatalf("Expected 1 content entry, got %d", len(captured.Contents))
	}

	turn := captured.Contents[0]

	if len(turn.Parts) != 2 {
		t.Fatalf("Expected context block plus question, got %d parts", len(turn.Parts))
	}

	context := turn.Parts[0].Text

	if !strings.Contains(context, "@@LINK[") {
		t.Error("Expected link-annotation instruction block in context")
	}

	if !strings.Contains(context, "Academic Integrity Policy") {
		t.Error("Expected academic integrity entry in retrieval context")
	}

	if !strings.Contains(context, "http://localhost:3000/media/policies/academic_integrity.pdf") {
		t.Error("Expected resolved document URL in resource list")
	}

	if !strings.Contains(turn.Parts[1].Text, "What is the policy on plagiarism?") {
		t.Error("Expected user question as final part")
	}

	if captured.SystemInstruction == nil || len(captured.SystemInstruction.Parts) == 0 ||
		!strings.Contains(captured.SystemInstruction.Parts[0].Text, "CodeNest AI") {
		t.Error("Expected platform system instruction")
	}
}

func TestChatNoMatchOmitsContextBlock(t *testing.T) {
	_, media := setupTest(t)

	server, _, captured := newMockGemini(t, "Hi.")
	client := services.NewGeminiClient("test-key", "").WithBaseURL(server.URL)
	r := newChatRouter(t, client, media)

	w := doJSON(t, r, http.MethodPost, "/api/chat/gemini", map[string]interface{}{
		"message": "Tell me a joke",
	}, chatToken(t))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	turn := captured.Contents[len(captured.Contents)-1]

	if len(turn.Parts) != 1 {
		t.Fatalf("Expected only the question part, got %d parts", len(turn.Parts))
	}

	if strings.Contains(turn.Parts[0].Text, "@@LINK[") {
		t.Error("Expected no link-instruction block without a retrieval hit")
	}
}

func TestChatHistoryLinkMarkersRewritten(t *testing.T) {
	_, media := setupTest(t)

	server, _, captured := newMockGemini(t, "Sure.")
	client := services.NewGeminiClient("test-key", "").WithBaseURL(server.URL)
	r := newChatRouter(t, client, media)

	w := doJSON(t, r, http.MethodPost, "/api/chat/gemini", map[string]interface{}{
		"message": "thanks",
		"history": []map[string]string{
			{"role": "user", "text": "where is the guide?"},
			{"role": "model", "text": "See the @@LINK[Foo](http://x/y)@@ for details."},
		},
	}, chatToken(t))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	if len(captured.Contents) != 3 {
		t.Fatalf("Expected 2 history turns plus current, got %d", len(captured.Contents))
	}

	modelTurn := captured.Contents[1]

	if modelTurn.Parts[0].Text != "See the http://x/y for details." {
		t.Errorf("Expected link marker rewritten to bare target, got %q", modelTurn.Parts[0].Text)
	}
}

func TestChatReturnsReplyVerbatim(t *testing.T) {
	_, media := setupTest(t)

	reply := "Check @@LINK[Policy](http://localhost:3000/media/policies/academic_integrity.pdf)@@."
	server, _, _ := newMockGemini(t, reply)
	client := services.NewGeminiClient("test-key", "").WithBaseURL(server.URL)
	r := newChatRouter(t, client, media)

	w := doJSON(t, r, http.MethodPost, "/api/chat/gemini", map[string]interface{}{
		"message": "plagiarism?",
	}, chatToken(t))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	if result := decodeJSON(t, w); result["reply"] != reply {
		t.Errorf("Expected verbatim reply, got %v", result["reply"])
	}
}

func TestChatUpstreamErrorIsGeneric500(t *testing.T) {
	_, media := setupTest(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "internal quota exceeded at shard 7"}}`, http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := services.NewGeminiClient("test-key", "").WithBaseURL(server.URL)
	r := newChatRouter(t, client, media)

	w := doJSON(t, r, http.MethodPost, "/api/chat/gemini", map[string]interface{}{
		"message": "hello",
	}, chatToken(t))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}

	if strings.Contains(w.Body.String(), "quota") {
		t.Error("Upstream error detail must not leak to the caller")
	}
}

func TestChatSafetyBlockReasonSurfaced(t *testing.T) {
	_, media := setupTest(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates":     []interface{}{},
			"promptFeedback": map[string]string{"blockReason": "SAFETY"},
		})
	}))
	t.Cleanup(server.Close)

	client := services.NewGeminiClient("test-key", "").WithBaseURL(server.URL)
	r := newChatRouter(t, client, media)

	w := doJSON(t, r, http.MethodPost, "/api/chat/gemini", map[string]interface{}{
		"message": "hello",
	}, chatToken(t))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}

	if !strings.Contains(w.Body.String(), "SAFETY") {
		t.Error("Expected block reason in error message")
	}
}

func TestChatRequiresAuth(t *testing.T) {
	r, _ := setupTest(t)

	w := doJSON(t, r, http.MethodPost, "/api/chat/gemini", map[string]interface{}{"message": "hi"}, "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}
}
