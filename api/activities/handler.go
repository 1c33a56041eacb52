package activities

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kilianp07/energyadvisor/core/activity"
	"github.com/kilianp07/energyadvisor/core/model"
)

// Manager is the subset of activity.Manager the handlers use.
type Manager interface {
	List() []model.ActivityDefinition
	Add(ctx context.Context, a model.ActivityDefinition) error
	Update(ctx context.Context, a model.ActivityDefinition) error
	Remove(ctx context.Context, id string) error
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, activity.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, activity.ErrDuplicateID):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(r *http.Request) (model.ActivityDefinition, error) {
	var s activity.StoredActivity
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return model.ActivityDefinition{}, err
	}
	return s.ToDefinition()
}

func stored(defs []model.ActivityDefinition) []activity.StoredActivity {
	out := make([]activity.StoredActivity, 0, len(defs))
	for _, a := range defs {
		out = append(out, activity.FromDefinition(a))
	}
	return out
}

// NewListHandler serves GET /api/activities.
func NewListHandler(m Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, stored(m.List()))
	})
}

// NewCreateHandler serves POST /api/activities.
func NewCreateHandler(m Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, err := decode(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := m.Add(r.Context(), a); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, activity.FromDefinition(a))
	})
}

// NewUpdateHandler serves PUT /api/activities/{id}. The path id wins over
// the id in the body.
func NewUpdateHandler(m Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, err := decode(r)
		if err != nil {
			writeError(w, err)
			return
		}
		a.ID = r.PathValue("id")
		if err := m.Update(r.Context(), a); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, activity.FromDefinition(a))
	})
}

// NewDeleteHandler serves DELETE /api/activities/{id}.
func NewDeleteHandler(m Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := m.Remove(r.Context(), r.PathValue("id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
