package server

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/leadlift/leadlift/internal/scoring"
	"github.com/leadlift/leadlift/internal/store"
)

const visitorCookieName = "ll_uid"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// visitorID resolves the anonymous visitor identifier: an explicit ID
// wins, then the cookie; otherwise a new ID is minted and cached in the
// cookie so it stays stable across calls.
func visitorID(w http.ResponseWriter, r *http.Request, explicit string) string {
	if explicit != "" {
		return explicit
	}

	if cookie, err := r.Cookie(visitorCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := "user_" + uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(365 * 24 * time.Hour / time.Second),
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

type trackRequest struct {
	UserID   string            `json:"user_id"`
	Type     string            `json:"type"`
	Metadata map[string]string `json:"metadata"`
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "Missing event type")
		return
	}

	userID := visitorID(w, r, req.UserID)

	lead, err := s.scoring.TrackEvent(r.Context(), userID, scoring.EventType(req.Type), req.Metadata)
	if err != nil {
		s.logger.Error("failed to track event", "user_id", userID, "type", req.Type, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to track event")
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func (s *Server) handleLead(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	lead, err := s.scoring.GetLead(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Lead not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to load lead", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load lead")
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

type contactRequest struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" || req.Email == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if !emailPattern.MatchString(req.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}

	err := s.store.AddContact(r.Context(), &store.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
		Company: req.Company,
		Phone:   req.Phone,
		Service: req.Service,
	})
	if err != nil {
		s.logger.Error("failed to store contact", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Feed the submission into lead scoring; a failure here degrades to
	// an unscored contact rather than surfacing to the caller.
	userID := visitorID(w, r, req.UserID)
	_, err = s.scoring.TrackEvent(r.Context(), userID, scoring.EventContactFormSubmit, map[string]string{
		"company": req.Company,
		"phone":   req.Phone,
		"service": req.Service,
	})
	if err != nil {
		s.logger.Warn("failed to score contact submission", "user_id", userID, "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Message sent successfully",
	})
}

type newsletterRequest struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (s *Server) handleNewsletter(w http.ResponseWriter, r *http.Request) {
	var req newsletterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}
	if !emailPattern.MatchString(req.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}

	err := s.store.AddSubscriber(r.Context(), &store.Subscriber{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if errors.Is(err, store.ErrDuplicate) {
		writeError(w, http.StatusConflict, "This email is already subscribed")
		return
	}
	if err != nil {
		s.logger.Error("failed to store subscriber", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to subscribe to newsletter")
		return
	}

	userID := visitorID(w, r, req.UserID)
	if _, err := s.scoring.TrackEvent(r.Context(), userID, scoring.EventNewsletterSignup, nil); err != nil {
		s.logger.Warn("failed to score newsletter signup", "user_id", userID, "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Successfully subscribed to newsletter",
	})
}
