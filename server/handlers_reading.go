package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/reading"
)

type readingResponse struct {
	reading.View
	Section *api.Section `json:"section,omitempty"`
}

// loadTracker loads the reader for the request's product as the profile's
// customer. Reader state lives on the collaborator, so every request loads
// it afresh.
func (s *Server) loadTracker(ctx context.Context, r *http.Request) (*reading.Tracker, error) {
	sc := s.scope(ctx)
	tracker := reading.NewTracker(sc.authorized(ctx), r.PathValue("productID"))
	if err := tracker.Load(ctx); err != nil {
		return nil, err
	}
	return tracker, nil
}

func (s *Server) ReadingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracker, err := s.loadTracker(r.Context(), r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, readingResponse{View: tracker.View()})
	}
}

func (s *Server) SelectSectionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracker, err := s.loadTracker(r.Context(), r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		section, err := tracker.SelectSection(r.Context(), r.PathValue("sectionID"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, readingResponse{View: tracker.View(), Section: section})
	}
}

func (s *Server) ToggleCompletionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracker, err := s.loadTracker(r.Context(), r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if _, err := tracker.ToggleCompletion(r.Context(), r.PathValue("sectionID")); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, readingResponse{View: tracker.View()})
	}
}

func (s *Server) ToggleBookmarkHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracker, err := s.loadTracker(r.Context(), r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if _, err := tracker.ToggleBookmark(r.Context(), r.PathValue("sectionID")); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, readingResponse{View: tracker.View()})
	}
}
