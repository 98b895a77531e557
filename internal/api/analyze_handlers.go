package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/kamilpajak/wordfreq/internal/wordfreq"
)

// writeAnalysisError writes the analyzer's rejection body, which uses an "Error" key.
func writeAnalysisError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, map[string]string{"Error": reason})
}

// analysisErrorReason maps an analyzer failure to its client-facing reason.
func analysisErrorReason(err error) (string, bool) {
	switch {
	case errors.Is(err, wordfreq.ErrEmptyInput):
		return "Empty file", true
	case errors.Is(err, wordfreq.ErrNoWordsFound):
		return "No valid words in file", true
	case errors.Is(err, wordfreq.ErrInvalidEncoding):
		return "File is not valid UTF-8 text", true
	default:
		return "", false
	}
}

// handleAnalyzeTextFile reports word frequencies for an uploaded text file.
func (s *Server) handleAnalyzeTextFile(w http.ResponseWriter, r *http.Request) {
	s.logger.Info().Msg("Frequency analyzer endpoint called")
	s.metrics.frequencies.Inc()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeAnalysisError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeAnalysisError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error().Err(err).Str("filename", header.Filename).Msg("failed to read upload")
		writeAnalysisError(w, http.StatusBadRequest, "Could not read file")
		return
	}

	result, err := wordfreq.Analyze(content, header.Filename)
	if err != nil {
		reason, ok := analysisErrorReason(err)
		if !ok {
			s.logger.Error().Err(err).Str("filename", header.Filename).Msg("analysis failed")
			writeError(w, http.StatusInternalServerError, "analysis failed")
			return
		}
		s.logger.Debug().Err(err).Str("filename", header.Filename).Msg("analysis rejected")
		writeAnalysisError(w, http.StatusBadRequest, reason)
		return
	}

	s.logger.Debug().
		Str("filename", result.Filename).
		Int("total_words", result.TotalWords).
		Int("highest_frequency", result.HighestFrequency).
		Msg("analysis complete")
	writeJSON(w, http.StatusOK, result)
}
