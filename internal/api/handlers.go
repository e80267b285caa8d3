package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ppiankov/valuecompass/internal/model"
	"github.com/ppiankov/valuecompass/internal/pipeline"
	"github.com/ppiankov/valuecompass/internal/store"
)

// ActionRequest is the body of /hints and /evaluate
type ActionRequest struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
}

// HintsResponse carries the keyword hints and their prompt block
type HintsResponse struct {
	Hints  []model.Hint `json:"hints"`
	Prompt string       `json:"prompt"`
}

// TaxonomyResponse lists the compass axes
type TaxonomyResponse struct {
	Axes     []model.Axis `json:"axes"`
	Coercive []string     `json:"coercive"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"llm":    s.pipeline.ProviderName(),
	})
}

func (s *Server) handleTaxonomy(w http.ResponseWriter, r *http.Request) {
	tax := s.pipeline.Detector().Taxonomy()
	respondJSON(w, http.StatusOK, TaxonomyResponse{
		Axes:     tax.Axes(),
		Coercive: tax.CoerciveKeywords(),
	})
}

func (s *Server) handleHints(w http.ResponseWriter, r *http.Request) {
	action, ok := decodeAction(w, r)
	if !ok {
		return
	}

	hints, prompt, err := s.pipeline.Hints(action)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, HintsResponse{Hints: hints, Prompt: prompt})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if !s.pipeline.LLMEnabled() {
		respondError(w, http.StatusServiceUnavailable, pipeline.ErrEvaluatorDisabled.Error())
		return
	}

	action, ok := decodeAction(w, r)
	if !ok {
		return
	}

	report, err := s.pipeline.Evaluate(r.Context(), action)
	if err != nil {
		if r.Context().Err() != nil {
			s.logger.Warn("evaluation cancelled", zap.Error(err))
			respondError(w, http.StatusServiceUnavailable, "evaluation cancelled")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := s.pipeline.History(r.Context(), limit)
	if errors.Is(err, pipeline.ErrJournalDisabled) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("history query failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to fetch history")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reportID")

	report, err := s.pipeline.Report(r.Context(), id)
	switch {
	case errors.Is(err, pipeline.ErrJournalDisabled), errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		s.logger.Error("report query failed", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to fetch report")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func decodeAction(w http.ResponseWriter, r *http.Request) (model.Action, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return model.Action{}, false
	}

	return model.Action{ID: req.ID, Title: req.Title, Summary: req.Summary}, true
}
