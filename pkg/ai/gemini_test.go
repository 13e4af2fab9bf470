package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Michael-Yan-wun/meeting-tools/pkg/config"
)

func testClient(baseURL string) *GeminiClient {
	return NewGeminiClient(&config.GeminiConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	})
}

func candidateResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]interface{}{{"text": text}},
			}},
		},
	}
}

func TestGenerateJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-2.5-flash:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query")
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.GenerationConfig == nil || req.GenerationConfig.ResponseMimeType != "application/json" {
			t.Errorf("expected JSON response mime type, got %+v", req.GenerationConfig)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "hello" {
			t.Errorf("unexpected prompt payload: %+v", req.Contents)
		}

		json.NewEncoder(w).Encode(candidateResponse(`{"ok":true}`))
	}))
	defer srv.Close()

	out, err := testClient(srv.URL).GenerateJSON(context.Background(), "gemini-2.5-flash", "hello")
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if out != `{"ok":true}` {
		t.Errorf("unexpected output %q", out)
	}
}

func TestGenerateJSONServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).GenerateJSON(context.Background(), "m", "p"); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestGenerateJSONEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).GenerateJSON(context.Background(), "m", "p"); err == nil {
		t.Fatal("expected error on empty candidates")
	}
}

func TestUploadFileWaitsForActive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audio.mp3")
	if err := os.WriteFile(path, []byte("fake audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	polls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/upload/v1beta/files", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Goog-Upload-Protocol") != "raw" {
			t.Errorf("expected raw upload protocol header")
		}
		if r.Header.Get("Content-Type") != "audio/mpeg" {
			t.Errorf("unexpected content type %s", r.Header.Get("Content-Type"))
		}
		json.NewEncoder(w).Encode(uploadResponse{File: uploadedFile{
			Name:  "files/abc123",
			URI:   "https://example.test/files/abc123",
			State: "PROCESSING",
		}})
	})
	mux.HandleFunc("/v1beta/files/abc123", func(w http.ResponseWriter, r *http.Request) {
		polls++
		state := "PROCESSING"
		if polls >= 2 {
			state = "ACTIVE"
		}
		json.NewEncoder(w).Encode(uploadedFile{
			Name:  "files/abc123",
			URI:   "https://example.test/files/abc123",
			State: state,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	uri, err := testClient(srv.URL).UploadFile(context.Background(), path, "audio/mpeg")
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if uri != "https://example.test/files/abc123" {
		t.Errorf("unexpected uri %q", uri)
	}
	if polls < 2 {
		t.Errorf("expected at least 2 polls, got %d", polls)
	}
}

func TestGenerateJSONFromFileSendsFilePart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		parts := req.Contents[0].Parts
		if len(parts) != 2 {
			t.Fatalf("expected 2 parts, got %d", len(parts))
		}
		if parts[0].FileData == nil || parts[0].FileData.FileURI != "uri-1" || parts[0].FileData.MimeType != "audio/wav" {
			t.Errorf("unexpected file part %+v", parts[0].FileData)
		}
		if parts[1].Text == "" {
			t.Errorf("missing instruction text part")
		}
		json.NewEncoder(w).Encode(candidateResponse(`{"transcription":"hi"}`))
	}))
	defer srv.Close()

	out, err := testClient(srv.URL).GenerateJSONFromFile(context.Background(), "gemini-1.5-flash", "uri-1", "audio/wav", "transcribe this")
	if err != nil {
		t.Fatalf("GenerateJSONFromFile: %v", err)
	}
	if out != `{"transcription":"hi"}` {
		t.Errorf("unexpected output %q", out)
	}
}

func TestHasCredential(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	if NewGeminiClient(&config.GeminiConfig{}).HasCredential() {
		t.Error("expected no credential with empty config and env")
	}
	if !NewGeminiClient(&config.GeminiConfig{APIKey: "k"}).HasCredential() {
		t.Error("expected credential from config")
	}
}
