package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"opportunity-board/internal/admin"
	"opportunity-board/internal/auth"
	"opportunity-board/internal/model"
	"opportunity-board/internal/storage"
)

type formField struct {
	model.Field
	Value string
}

type formView struct {
	Collection string
	Label      string
	ID         string
	Action     string
	Submit     string
	Fields     []formField
}

func collectionLabel(col string) string {
	if col == model.CollectionAds {
		return "Ad"
	}
	return model.Category(col).Badge().Label
}

func buildForm(collection, id string, schema []model.Field, values map[string]string) formView {
	v := formView{Collection: collection, Label: collectionLabel(collection), ID: id}
	if id == "" {
		v.Action = "/admin/new/" + collection
		v.Submit = "Create " + v.Label
	} else {
		v.Action = "/admin/edit/" + collection + "/" + id
		v.Submit = "Save Changes"
	}
	for _, f := range schema {
		v.Fields = append(v.Fields, formField{Field: f, Value: values[f.Name]})
	}
	return v
}

// formValues returns the first value of every posted form key.
func formValues(r *http.Request) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(r.PostForm))
	for k, vs := range r.PostForm {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out, nil
}

func manageURL(collection string) string {
	if collection == "" {
		return "/admin/posts"
	}
	return "/admin/posts?collection=" + collection
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "dashboard.html", "Dashboard", map[string]any{
		"Dashboard":   s.Admin.Dashboard(r.Context()),
		"Collections": model.ContentCollections(),
	})
}

func (s *Server) handleManage(w http.ResponseWriter, r *http.Request) {
	col := r.URL.Query().Get("collection")
	if col == "" {
		col = model.AllCategories
	}
	rows, err := s.Admin.ManageList(r.Context(), col)
	if err != nil {
		var ve *admin.ValidationError
		if errors.As(err, &ve) {
			s.redirectWithFlash(w, r, manageURL(""), "error", ve.Msg)
			return
		}
		slog.Error("web: manage list failed", "collection", col, "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Could not load posts")
		return
	}
	opts := append(categoryOptions(), option{Value: model.CollectionAds, Label: "Ads"})
	s.render(w, r, http.StatusOK, "manage.html", "Manage Posts", map[string]any{
		"Rows":       rows,
		"Collection": col,
		"Options":    opts,
	})
}

func (s *Server) handleNewForm(w http.ResponseWriter, r *http.Request) {
	col := r.PathValue("collection")
	schema, err := s.Admin.Schema(col)
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, "Unknown collection")
		return
	}
	s.render(w, r, http.StatusOK, "form.html", "New "+collectionLabel(col), buildForm(col, "", schema, nil))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	col := r.PathValue("collection")
	schema, err := s.Admin.Schema(col)
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, "Unknown collection")
		return
	}
	values, err := formValues(r)
	if err != nil {
		s.renderFlash(w, r, http.StatusBadRequest, "form.html", "New "+collectionLabel(col), buildForm(col, "", schema, nil),
			&Flash{Kind: "error", Message: "Failed to save: malformed form data"})
		return
	}
	if _, err := s.Admin.Create(r.Context(), col, values, auth.UserFromContext(r.Context())); err != nil {
		status := http.StatusInternalServerError
		var ve *admin.ValidationError
		if errors.As(err, &ve) {
			status = http.StatusBadRequest
		} else {
			slog.Error("web: create failed", "collection", col, "error", err)
		}
		s.renderFlash(w, r, status, "form.html", "New "+collectionLabel(col), buildForm(col, "", schema, values),
			&Flash{Kind: "error", Message: "Failed to save: " + err.Error()})
		return
	}
	// redirect to a blank form so the input is cleared
	s.redirectWithFlash(w, r, "/admin/new/"+col, "success", fmt.Sprintf("%s post created successfully!", collectionLabel(col)))
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	col, id := r.PathValue("collection"), r.PathValue("id")
	schema, err := s.Admin.Schema(col)
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, "Unknown collection")
		return
	}
	doc, err := s.Admin.Get(r.Context(), col, id)
	if err != nil {
		if !admin.IsNotFound(err) {
			slog.Error("web: load for edit failed", "collection", col, "id", id, "error", err)
		}
		s.redirectWithFlash(w, r, manageURL(col), "error", "Post not found")
		return
	}
	s.render(w, r, http.StatusOK, "form.html", "Edit "+collectionLabel(col), buildForm(col, id, schema, doc.Fields))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	col, id := r.PathValue("collection"), r.PathValue("id")
	schema, err := s.Admin.Schema(col)
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, "Unknown collection")
		return
	}
	values, err := formValues(r)
	if err != nil {
		s.renderFlash(w, r, http.StatusBadRequest, "form.html", "Edit "+collectionLabel(col), buildForm(col, id, schema, nil),
			&Flash{Kind: "error", Message: "Update failed: malformed form data"})
		return
	}
	if err := s.Admin.Update(r.Context(), col, id, values); err != nil {
		status := http.StatusInternalServerError
		var ve *admin.ValidationError
		switch {
		case errors.As(err, &ve):
			status = http.StatusBadRequest
		case admin.IsNotFound(err):
			status = http.StatusNotFound
		default:
			slog.Error("web: update failed", "collection", col, "id", id, "error", err)
		}
		s.renderFlash(w, r, status, "form.html", "Edit "+collectionLabel(col), buildForm(col, id, schema, values),
			&Flash{Kind: "error", Message: "Update failed: " + err.Error()})
		return
	}
	s.redirectWithFlash(w, r, manageURL(col), "success", "Post updated successfully!")
}

func (s *Server) handleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	col, id := r.PathValue("collection"), r.PathValue("id")
	doc, err := s.Admin.Get(r.Context(), col, id)
	if err != nil {
		s.redirectWithFlash(w, r, manageURL(col), "error", "Post not found")
		return
	}
	s.render(w, r, http.StatusOK, "confirm_delete.html", "Delete", map[string]any{
		"Collection": col,
		"ID":         id,
		"Title":      doc.Fields["title"],
		"Label":      collectionLabel(col),
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	col, id := r.PathValue("collection"), r.PathValue("id")
	if r.PostFormValue("confirm") != "yes" {
		s.redirectWithFlash(w, r, manageURL(col), "info", "Delete cancelled")
		return
	}
	if err := s.Admin.Delete(r.Context(), col, id); err != nil {
		msg := "Delete failed: " + err.Error()
		if errors.Is(err, storage.ErrNotFound) {
			msg = "Delete failed: post not found"
		} else {
			slog.Error("web: delete failed", "collection", col, "id", id, "error", err)
		}
		s.redirectWithFlash(w, r, manageURL(col), "error", msg)
		return
	}
	s.redirectWithFlash(w, r, manageURL(col), "success", "Post deleted")
}
