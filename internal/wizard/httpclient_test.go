package wizard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycustomai/wizard/internal/models"
)

func TestAPIClientNextQuestion(t *testing.T) {
	var gotReq models.NextQuestionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/next-question", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(models.NextQuestionResponse{
			Success: true,
			Data:    &models.Question{Question: "How formal?", InputType: models.InputTypeTextarea},
		})
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL)
	q, err := client.NextQuestion(context.Background(), models.NextQuestionRequest{
		SelectedTargets: []models.TargetID{models.TargetClaude},
		QuestionCount:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, "How formal?", q.Question)
	assert.Equal(t, 2, gotReq.QuestionCount)
}

func TestAPIClientNextQuestionCompletionSignal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.NextQuestionResponse{
			Success: true,
			Data:    &models.Question{Question: "Anything else?", InputType: models.InputTypeTextarea, IsComplete: true},
		})
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL)
	q, err := client.NextQuestion(context.Background(), models.NextQuestionRequest{
		SelectedTargets: []models.TargetID{models.TargetClaude},
		QuestionCount:   10,
	})
	require.NoError(t, err)
	assert.True(t, q.IsComplete)
}

func TestAPIClientNextQuestionErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.NextQuestionResponse{Success: false, Error: "No models selected"})
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL)
	_, err := client.NextQuestion(context.Background(), models.NextQuestionRequest{})
	require.Error(t, err)
	assert.Equal(t, "No models selected", err.Error())
}

func TestAPIClientAnalyzeAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/analyze-answer", r.URL.Path)
		var req models.AnalyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Q", req.Question)
		json.NewEncoder(w).Encode(models.AnalyzeResponse{Success: true, Insight: "prefers brevity"})
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL)
	insight, err := client.AnalyzeAnswer(context.Background(), "Q", "A")
	require.NoError(t, err)
	assert.Equal(t, "prefers brevity", insight)
}

func TestAPIClientAnalyzeAnswerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.AnalyzeResponse{Error: "rate limited"})
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL)
	_, err := client.AnalyzeAnswer(context.Background(), "Q", "A")
	require.Error(t, err)
	assert.Equal(t, "rate limited", err.Error())
}

func TestAPIClientGenerateStreams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		flusher := w.(http.Flusher)
		for _, chunk := range []string{`{"gemini":{"instru`, `ctions":"Be brief."}}`} {
			w.Write([]byte(chunk))
			flusher.Flush()
		}
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL)
	started := false
	var received string
	err := client.Generate(context.Background(),
		models.GenerateRequest{
			SelectedTargets: []models.TargetID{models.TargetGemini},
			Answers:         []models.Answer{{QuestionID: "q-1", Question: "Q", Answer: "A"}},
		},
		func() { started = true },
		func(text string) {
			require.True(t, started, "onStart must precede chunks")
			received += text
		},
	)
	require.NoError(t, err)
	assert.Equal(t, `{"gemini":{"instructions":"Be brief."}}`, received)
}

func TestAPIClientGenerateSplitRuneAcrossChunks(t *testing.T) {
	payload := []byte(`{"gemini":{"instructions":"Réponds brièvement."}}`)
	// Split inside a multi-byte rune.
	cut := 0
	for i, b := range payload {
		if b >= 0x80 {
			cut = i + 1
			break
		}
	}
	require.Positive(t, cut)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Write(payload[:cut])
		flusher.Flush()
		w.Write(payload[cut:])
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL)
	var received string
	err := client.Generate(context.Background(),
		models.GenerateRequest{
			SelectedTargets: []models.TargetID{models.TargetGemini},
			Answers:         []models.Answer{{QuestionID: "q-1", Question: "Q", Answer: "A"}},
		},
		nil,
		func(text string) { received += text },
	)
	require.NoError(t, err)
	assert.Equal(t, string(payload), received)
}

func TestAPIClientGenerateErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.GenerateError{Error: "No answers provided"})
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL)
	err := client.Generate(context.Background(), models.GenerateRequest{},
		func() { t.Error("onStart must not fire on failure") },
		func(string) { t.Error("no chunks expected on failure") },
	)
	require.Error(t, err)
	assert.Equal(t, "No answers provided", err.Error())
}

func TestAPIClientGenerateGatewayTimeout(t *testing.T) {
	for _, status := range []int{http.StatusBadGateway, http.StatusGatewayTimeout} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte("upstream timeout"))
		}))

		client := NewAPIClient(srv.URL)
		err := client.Generate(context.Background(), models.GenerateRequest{}, nil, nil)
		require.Error(t, err)
		assert.Equal(t, "Generation timed out. Click Try Again.", err.Error())
		srv.Close()
	}
}

func TestAPIClientGenerateGenericServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL)
	err := client.Generate(context.Background(), models.GenerateRequest{}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, "Server error (500). Please try again.", err.Error())
}

func TestAPIClientTrimsTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/analyze-answer", r.URL.Path)
		json.NewEncoder(w).Encode(models.AnalyzeResponse{Success: true, Insight: "ok"})
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL + "/")
	_, err := client.AnalyzeAnswer(context.Background(), "Q", "A")
	require.NoError(t, err)
}
