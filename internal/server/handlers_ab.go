package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leadlift/leadlift/internal/abtest"
)

type variantResponse struct {
	TestID    string            `json:"test_id"`
	VariantID string            `json:"variant_id"`
	Config    map[string]string `json:"config"`
}

func (s *Server) handleVariant(w http.ResponseWriter, r *http.Request) {
	testID := chi.URLParam(r, "testID")
	uid := visitorID(w, r, r.URL.Query().Get("uid"))

	test, variant, err := s.assigner.Variant(r.Context(), testID, uid)
	if errors.Is(err, abtest.ErrUnknownTest) {
		writeError(w, http.StatusNotFound, "Test not found")
		return
	}
	if err != nil {
		// Storage trouble degrades to the control experience so the
		// caller's page still renders.
		s.logger.Error("failed to assign variant", "test_id", testID, "visitor_id", uid, "error", err)
		if test != nil {
			variant = test.Variant(abtest.ControlVariantID)
		}
		if variant == nil {
			variant = &abtest.Variant{ID: abtest.ControlVariantID, Name: "Control"}
		}
	}

	config := variant.Config
	if config == nil {
		config = map[string]string{}
	}

	writeJSON(w, http.StatusOK, variantResponse{
		TestID:    testID,
		VariantID: variant.ID,
		Config:    config,
	})
}

type convertRequest struct {
	UserID string  `json:"user_id"`
	Value  float64 `json:"value"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	testID := chi.URLParam(r, "testID")

	var req convertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	uid := visitorID(w, r, req.UserID)

	// Convert against the visitor's sticky assignment; a conversion from
	// a visitor who was never exposed falls back to control.
	variantID, err := s.store.GetAssignment(r.Context(), testID, uid)
	if err != nil {
		variantID = abtest.ControlVariantID
	}

	err = s.assigner.RecordConversion(r.Context(), testID, variantID, uid, req.Value)
	if errors.Is(err, abtest.ErrUnknownTest) {
		writeError(w, http.StatusNotFound, "Test not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to record conversion", "test_id", testID, "visitor_id", uid, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to record conversion")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	testID := chi.URLParam(r, "testID")

	test := s.registry.Get(testID)
	if test == nil {
		writeError(w, http.StatusNotFound, "Test not found")
		return
	}

	stats, err := s.store.GetVariantStats(r.Context(), testID)
	if err != nil {
		s.logger.Error("failed to load variant stats", "test_id", testID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load results")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"test_id": testID,
		"name":    test.Name,
		"status":  test.Status,
		"report":  abtest.BuildReport(test, stats),
	})
}
