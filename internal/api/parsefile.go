// Package api provides the plain-text file-extraction boundary endpoint.
package api

import (
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mycustomai/wizard/internal/models"
)

// maxUploadBytes bounds an uploaded foundation document.
const maxUploadBytes = 10 << 20

type parseFileResponse struct {
	Success        bool   `json:"success"`
	Text           string `json:"text"`
	Filename       string `json:"filename"`
	CharacterCount int    `json:"characterCount"`
}

var (
	rtfControlWords = regexp.MustCompile(`(?i)\\[a-z]+\d* ?`)
	multiBlankLines = regexp.MustCompile(`\n{3,}`)
)

// parseFileHandler extracts plain text from an uploaded foundation document
// (POST /api/parse-file). Only text-family formats are handled; rich binary
// formats are rejected with a format-specific message.
func (s *Server) parseFileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.parseFileHandler: processing request", "method", r.Method, "path", r.URL.Path)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		slog.Warn("Server.parseFileHandler: no file in request", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.GenerateError{Error: "No file provided"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("Server.parseFileHandler: failed to read upload", "error", err, "filename", header.Filename)
		writeJSONResponse(w, http.StatusInternalServerError, models.GenerateError{Error: "Failed to parse file. Please try a different format or paste text directly."})
		return
	}

	var text string
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".pdf", ".docx", ".doc":
		slog.Warn("Server.parseFileHandler: unsupported binary format", "filename", header.Filename)
		writeJSONResponse(w, http.StatusBadRequest, models.GenerateError{Error: "Binary document formats are not supported. Please convert to plain text or paste text directly."})
		return
	case ".rtf":
		text = stripRTF(string(data))
	default:
		// Plain text files (.txt, .md)
		text = string(data)
	}

	text = normalizeExtractedText(text)
	if len(text) < models.MinExtractedTextLength {
		slog.Warn("Server.parseFileHandler: extraction too short", "filename", header.Filename, "length", len(text))
		writeJSONResponse(w, http.StatusBadRequest, models.GenerateError{Error: "Could not extract text from file. Please try pasting the text directly."})
		return
	}

	slog.Info("Server.parseFileHandler: file parsed", "filename", header.Filename, "characters", len(text))
	writeJSONResponse(w, http.StatusOK, parseFileResponse{
		Success:        true,
		Text:           text,
		Filename:       header.Filename,
		CharacterCount: len(text),
	})
}

// stripRTF removes RTF control words and group braces, leaving the text runs.
func stripRTF(content string) string {
	text := rtfControlWords.ReplaceAllString(content, "")
	text = strings.NewReplacer("{", "", "}", "", `\\`, `\`).Replace(text)
	return strings.TrimSpace(text)
}

// normalizeExtractedText canonicalizes newlines and collapses runs of blank lines.
func normalizeExtractedText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = multiBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
