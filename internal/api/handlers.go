// Package api provides HTTP handlers for the wizard endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mycustomai/wizard/internal/models"
)

// nextQuestionHandler asks the question oracle for the next question
// (POST /api/next-question). The response is the success/data/error envelope
// the session engine's oracle client consumes; an isComplete question signals
// the engine to begin generation.
func (s *Server) nextQuestionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.nextQuestionHandler: processing request", "method", r.Method, "path", r.URL.Path)

	var req models.NextQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.nextQuestionHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.NextQuestionResponse{Success: false, Error: "Invalid JSON format"})
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Server.nextQuestionHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.NextQuestionResponse{Success: false, Error: "No models selected"})
		return
	}

	systemPrompt := buildQuestionSystemPrompt(req.SelectedTargets, req.WritingCodex, req.PersonalConstitution)
	userPrompt := buildQuestionUserPrompt(req.PreviousAnswers, req.QuestionCount)

	text, err := s.gaClient.GeneratePrompt(r.Context(), systemPrompt, userPrompt)
	if err != nil {
		slog.Error("Server.nextQuestionHandler: question generation failed", "error", err, "questionCount", req.QuestionCount)
		writeJSONResponse(w, http.StatusInternalServerError, models.NextQuestionResponse{Success: false, Error: "Failed to generate question"})
		return
	}

	data := parseQuestionResponse(text)
	if data == nil {
		slog.Error("Server.nextQuestionHandler: failed to parse oracle response", "response_length", len(text))
		writeJSONResponse(w, http.StatusInternalServerError, models.NextQuestionResponse{Success: false, Error: "Failed to generate question"})
		return
	}

	slog.Info("Server.nextQuestionHandler: question generated", "questionCount", req.QuestionCount, "isComplete", data.IsComplete, "inputType", data.InputType)
	writeJSONResponse(w, http.StatusOK, models.NextQuestionResponse{Success: true, Data: data})
}

// analyzeAnswerHandler distills one answer into an insight
// (POST /api/analyze-answer). Failures here are absorbed by the caller; the
// handler only reports them.
func (s *Server) analyzeAnswerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.analyzeAnswerHandler: processing request", "method", r.Method, "path", r.URL.Path)

	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.analyzeAnswerHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.AnalyzeResponse{Error: "Missing question or answer"})
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Server.analyzeAnswerHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.AnalyzeResponse{Error: "Missing question or answer"})
		return
	}

	insight, err := s.gaClient.GenerateSummary(r.Context(), buildAnalysisPrompt(req.Question, req.Answer))
	if err != nil {
		slog.Error("Server.analyzeAnswerHandler: analysis failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.AnalyzeResponse{Error: err.Error()})
		return
	}

	slog.Debug("Server.analyzeAnswerHandler: analysis complete", "insight_length", len(insight))
	writeJSONResponse(w, http.StatusOK, models.AnalyzeResponse{Success: true, Insight: insight})
}

// generateHandler streams the final instructions document
// (POST /api/generate). Pre-stream failures return a JSON {error} envelope;
// once streaming begins the body is raw text deltas, flushed as they arrive,
// whose concatenation is one JSON document.
func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.generateHandler: processing request", "method", r.Method, "path", r.URL.Path)

	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.generateHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.GenerateError{Error: "Invalid JSON format"})
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Server.generateHandler: validation failed", "error", err)
		msg := "No answers provided"
		if errors.Is(err, models.ErrNoTargetsSelected) {
			msg = "No models selected"
		}
		writeJSONResponse(w, http.StatusBadRequest, models.GenerateError{Error: msg})
		return
	}

	systemPrompt := buildGenerationSystemPrompt(req.SelectedTargets)
	userPrompt := buildGenerationUserPrompt(&req)

	flusher, ok := w.(http.Flusher)
	if !ok {
		slog.Error("Server.generateHandler: response writer does not support flushing")
		writeJSONResponse(w, http.StatusInternalServerError, models.GenerateError{Error: "Streaming unsupported"})
		return
	}

	started := time.Now()
	var bytesStreamed int
	headerWritten := false
	onDelta := func(delta string) {
		if !headerWritten {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			w.WriteHeader(http.StatusOK)
			headerWritten = true
		}
		n, err := w.Write([]byte(delta))
		if err != nil {
			slog.Warn("Server.generateHandler: client write failed", "error", err)
			return
		}
		bytesStreamed += n
		flusher.Flush()
	}

	if err := s.gaClient.GenerateStream(r.Context(), systemPrompt, userPrompt, onDelta); err != nil {
		slog.Error("Server.generateHandler: generation stream failed", "error", err, "bytes_streamed", bytesStreamed)
		if !headerWritten {
			writeJSONResponse(w, http.StatusInternalServerError, models.GenerateError{Error: "Failed to generate custom instructions"})
		}
		// Mid-stream failures leave a truncated body; the consumer's final
		// parse fails and the operation is retried from its side.
		return
	}

	slog.Info("Server.generateHandler: generation streamed", "bytes", bytesStreamed, "targets", len(req.SelectedTargets), "answers", len(req.Answers), "duration", time.Since(started))
}

// targetsHandler returns the supported platform catalog with each target's
// field specs (GET /api/targets). Clients use it to render the selection and
// navigation surfaces.
func (s *Server) targetsHandler(w http.ResponseWriter, r *http.Request) {
	catalog := make([]map[string]interface{}, 0, len(models.Targets))
	for _, target := range models.Targets {
		catalog = append(catalog, map[string]interface{}{
			"id":          target.ID,
			"name":        target.Name,
			"company":     target.Company,
			"description": target.Description,
			"fields":      models.TargetFields[target.ID],
		})
	}
	writeJSONResponse(w, http.StatusOK, models.Success(catalog))
}

// healthHandler provides a health check endpoint for monitoring and load balancing
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
