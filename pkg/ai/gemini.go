package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Michael-Yan-wun/meeting-tools/pkg/config"
)

// GeminiClient is a minimal client for the Gemini generateContent API. It
// covers the two calls this service needs: JSON generation from a text prompt
// and JSON generation from an uploaded audio file.
type GeminiClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGeminiClient creates a Gemini client using values from the provided
// config. Pass a nil config to fall back to environment variables.
func NewGeminiClient(cfg *config.GeminiConfig) *GeminiClient {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	var base string
	if cfg != nil && cfg.BaseURL != "" {
		base = cfg.BaseURL
	} else {
		base = os.Getenv("GEMINI_BASE_URL")
		if base == "" {
			base = "https://generativelanguage.googleapis.com"
		}
	}

	timeout := 120 * time.Second
	if cfg != nil && cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: base,
		client:  &http.Client{Timeout: timeout},
	}
}

// HasCredential reports whether an API key is configured.
func (g *GeminiClient) HasCredential() bool {
	return g.apiKey != ""
}

// generateRequest is the shape for generateContent requests
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text     string    `json:"text,omitempty"`
	FileData *fileData `json:"file_data,omitempty"`
}

type fileData struct {
	MimeType string `json:"mime_type"`
	FileURI  string `json:"file_uri"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

// generateResponse is a minimal response shape
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// uploadedFile mirrors the File resource returned by the media upload API
type uploadedFile struct {
	Name  string `json:"name"`
	URI   string `json:"uri"`
	State string `json:"state"`
}

type uploadResponse struct {
	File uploadedFile `json:"file"`
}

// GenerateJSON sends a text prompt to the given model and returns the model
// output. The request forces a JSON response mime type.
func (g *GeminiClient) GenerateJSON(ctx context.Context, model string, prompt string) (string, error) {
	req := generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	}
	return g.generate(ctx, model, &req)
}

// GenerateJSONFromFile prompts the given model with a previously uploaded
// file plus an instruction text, returning the model output.
func (g *GeminiClient) GenerateJSONFromFile(ctx context.Context, model string, fileURI string, mimeType string, prompt string) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{
			{FileData: &fileData{MimeType: mimeType, FileURI: fileURI}},
			{Text: prompt},
		}}},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	}
	return g.generate(ctx, model, &req)
}

func (g *GeminiClient) generate(ctx context.Context, model string, reqBody *generateRequest) (string, error) {
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", err
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}
	return gr.Candidates[0].Content.Parts[0].Text, nil
}

// UploadFile uploads a local file via the raw media upload protocol and waits
// until it is ready to reference from a prompt. Returns the file URI.
func (g *GeminiClient) UploadFile(ctx context.Context, path string, mimeType string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	endpoint := fmt.Sprintf("%s/upload/v1beta/files?key=%s", g.baseURL, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, f)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Goog-Upload-Protocol", "raw")
	req.Header.Set("Content-Type", mimeType)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("gemini upload returned status %d", resp.StatusCode)
	}

	var ur uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return "", err
	}
	if ur.File.URI == "" {
		return "", fmt.Errorf("upload response missing file URI")
	}

	// Audio files go through server-side processing before they can be used.
	file := ur.File
	for file.State == "PROCESSING" {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(2 * time.Second):
		}
		file, err = g.getFile(ctx, file.Name)
		if err != nil {
			return "", err
		}
	}
	if file.State == "FAILED" {
		return "", fmt.Errorf("gemini failed to process uploaded file")
	}
	return file.URI, nil
}

func (g *GeminiClient) getFile(ctx context.Context, name string) (uploadedFile, error) {
	endpoint := fmt.Sprintf("%s/v1beta/%s?key=%s", g.baseURL, name, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return uploadedFile{}, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return uploadedFile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return uploadedFile{}, fmt.Errorf("gemini file lookup returned status %d: %s", resp.StatusCode, body)
	}

	var file uploadedFile
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return uploadedFile{}, err
	}
	return file, nil
}
