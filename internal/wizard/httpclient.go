package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mycustomai/wizard/internal/models"
)

// APIClient implements the three collaborator services over HTTP against the
// wizard API server.
type APIClient struct {
	baseURL string
	client  *http.Client
}

// APIClientOption configures an APIClient.
type APIClientOption func(*APIClient)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) APIClientOption {
	return func(a *APIClient) { a.client = c }
}

// NewAPIClient creates a client for the wizard API server at baseURL.
// The default HTTP client carries no global timeout; the generate stream can
// legitimately run for minutes and is bounded by its context instead.
func NewAPIClient(baseURL string, opts ...APIClientOption) *APIClient {
	a := &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *APIClient) postJSON(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	return resp, nil
}

// NextQuestion implements QuestionService.
func (a *APIClient) NextQuestion(ctx context.Context, req models.NextQuestionRequest) (*models.Question, error) {
	resp, err := a.postJSON(ctx, "/api/next-question", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var envelope models.NextQuestionResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode next-question response (status %d): %w", resp.StatusCode, err)
	}
	if !envelope.Success || envelope.Data == nil {
		msg := envelope.Error
		if msg == "" {
			msg = fmt.Sprintf("next-question request failed with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%s", msg)
	}
	return envelope.Data, nil
}

// AnalyzeAnswer implements AnalysisService.
func (a *APIClient) AnalyzeAnswer(ctx context.Context, question, answer string) (string, error) {
	resp, err := a.postJSON(ctx, "/api/analyze-answer", models.AnalyzeRequest{Question: question, Answer: answer})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var envelope models.AnalyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("failed to decode analyze-answer response (status %d): %w", resp.StatusCode, err)
	}
	if !envelope.Success {
		msg := envelope.Error
		if msg == "" {
			msg = fmt.Sprintf("analyze-answer request failed with status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("%s", msg)
	}
	return envelope.Insight, nil
}

// Generate implements GenerationService. A non-200 status is resolved into a
// user-facing error before any callback fires; on 200 the body's text deltas
// are decoded on rune boundaries and handed to onChunk as they arrive.
func (a *APIClient) Generate(ctx context.Context, req models.GenerateRequest, onStart func(), onChunk func(text string)) error {
	resp, err := a.postJSON(ctx, "/api/generate", req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s", generateFailureMessage(resp))
	}

	if onStart != nil {
		onStart()
	}

	var splitter utf8Splitter
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if text := splitter.feed(buf[:n]); text != "" {
				onChunk(text)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("generation stream interrupted: %w", err)
		}
	}
	if text := splitter.flush(); text != "" {
		onChunk(text)
	}
	return nil
}

// generateFailureMessage maps a failed generate response to the message shown
// to the user: the server's own {error} body when present, a timeout notice
// for gateway statuses, or a generic server error.
func generateFailureMessage(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var envelope models.GenerateError
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	if resp.StatusCode == http.StatusBadGateway || resp.StatusCode == http.StatusGatewayTimeout {
		return "Generation timed out. Click Try Again."
	}
	return fmt.Sprintf("Server error (%d). Please try again.", resp.StatusCode)
}
