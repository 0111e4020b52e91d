package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/analytics"
)

// handleUsers returns the user roster, filtered by the q substring and
// ordered by the sort/dir parameters. Defaults: all users, most uses first.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	q := r.URL.Query()
	sort := analytics.UserSort{
		Field:      analytics.ParseSortField(q.Get("sort")),
		Descending: q.Get("dir") != "asc",
	}

	users := analytics.FilterUsers(snap.Users, q.Get("q"))
	analytics.SortUsers(users, sort)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"total": len(users),
		"sort":  string(sort.Field),
		"dir":   dirLabel(sort.Descending),
	})
}

func dirLabel(descending bool) string {
	if descending {
		return "desc"
	}
	return "asc"
}

// handleUserDetail returns the drill-down view for one user. The email
// path segment is URL-escaped by the client.
func (s *Server) handleUserDetail(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.snapshot(w); !ok {
		return
	}

	email := chi.URLParam(r, "email")
	if decoded, err := url.PathUnescape(email); err == nil {
		email = decoded
	}
	if email == "" {
		respondError(w, http.StatusBadRequest, "Invalid user email")
		return
	}

	detail, err := s.controller.UserDetail(email)
	if err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, detail)
}
