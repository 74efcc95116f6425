package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"opportunity-board/internal/admin"
	"opportunity-board/internal/auth"
	"opportunity-board/internal/storage"
)

type documentJSON struct {
	ID         string            `json:"id"`
	Collection string            `json:"collection"`
	Fields     map[string]string `json:"fields"`
	PostedAt   *time.Time        `json:"postedAt,omitempty"`
}

func toJSON(collection string, d storage.Document) documentJSON {
	out := documentJSON{ID: d.ID, Collection: collection, Fields: d.Fields}
	if !d.PostedAt.IsZero() {
		t := d.PostedAt
		out.PostedAt = &t
	}
	return out
}

// writeAdminError maps service errors to status codes.
func writeAdminError(w http.ResponseWriter, err error) {
	var ve *admin.ValidationError
	switch {
	case errors.As(err, &ve):
		jsonError(w, ve.Msg, http.StatusBadRequest)
	case errors.Is(err, storage.ErrNotFound):
		jsonError(w, "not found", http.StatusNotFound)
	default:
		slog.Error("api: admin operation failed", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func decodeFields(r *http.Request) (map[string]string, error) {
	var in map[string]string
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return nil, &admin.ValidationError{Msg: "body must be a JSON object of string fields"}
	}
	return in, nil
}

func (s *Server) apiDashboard(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, s.Admin.Dashboard(r.Context()))
}

func (s *Server) apiList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Admin.ManageList(r.Context(), r.PathValue("collection"))
	if err != nil {
		writeAdminError(w, err)
		return
	}
	jsonOK(w, rows)
}

func (s *Server) apiGet(w http.ResponseWriter, r *http.Request) {
	col := r.PathValue("collection")
	doc, err := s.Admin.Get(r.Context(), col, r.PathValue("id"))
	if err != nil {
		writeAdminError(w, err)
		return
	}
	jsonOK(w, toJSON(col, doc))
}

func (s *Server) apiCreate(w http.ResponseWriter, r *http.Request) {
	col := r.PathValue("collection")
	fields, err := decodeFields(r)
	if err != nil {
		writeAdminError(w, err)
		return
	}
	doc, err := s.Admin.Create(r.Context(), col, fields, auth.UserFromContext(r.Context()))
	if err != nil {
		writeAdminError(w, err)
		return
	}
	jsonStatus(w, http.StatusCreated, toJSON(col, doc))
}

func (s *Server) apiUpdate(w http.ResponseWriter, r *http.Request) {
	col, id := r.PathValue("collection"), r.PathValue("id")
	fields, err := decodeFields(r)
	if err != nil {
		writeAdminError(w, err)
		return
	}
	if err := s.Admin.Update(r.Context(), col, id, fields); err != nil {
		writeAdminError(w, err)
		return
	}
	doc, err := s.Admin.Get(r.Context(), col, id)
	if err != nil {
		writeAdminError(w, err)
		return
	}
	jsonOK(w, toJSON(col, doc))
}

func (s *Server) apiDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.Admin.Delete(r.Context(), r.PathValue("collection"), r.PathValue("id")); err != nil {
		writeAdminError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
