package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/jonathan/jobtrack/internal/dashboard"
	"github.com/jonathan/jobtrack/internal/form"
	"github.com/jonathan/jobtrack/internal/listing"
	"github.com/jonathan/jobtrack/internal/server/middleware"
	"github.com/jonathan/jobtrack/internal/types"
)

// applicationsResponse is one page of the applications table together with
// the view state that produced it.
type applicationsResponse struct {
	types.View
	ViewState    types.ViewParams        `json:"viewState"`
	Summary      types.TableSummary      `json:"summary"`
	JobTypes     []types.JobType         `json:"jobTypes"`
	Statuses     []types.Status          `json:"statuses"`
	StatusColors map[types.Status]string `json:"statusColors"`
}

type sortRequest struct {
	Key types.SortKey `json:"key"`
}

// handleListApplications applies query parameters to the session's view,
// clamps the page and returns the resulting page.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	sess, err := middleware.GetSession(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	records := s.store.List()
	var view types.View
	params, err := sess.UpdateView(func(current types.ViewParams) (types.ViewParams, error) {
		next, err := listing.ApplyQuery(current, r.URL.Query())
		if err != nil {
			return current, err
		}
		view = s.engine.ComputeView(records, next)
		if page := listing.ClampPage(next.Page, view.TotalPages); page != next.Page {
			next.Page = page
			view = s.engine.ComputeView(records, next)
		}
		return next, nil
	})
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, s.applicationsPage(view, params, records))
}

func (s *Server) applicationsPage(view types.View, params types.ViewParams, records []types.ApplicationRecord) applicationsResponse {
	colors := make(map[types.Status]string, len(view.Records))
	for _, rec := range view.Records {
		colors[rec.Status] = dashboard.StatusColor(rec.Status)
	}
	return applicationsResponse{
		View:         view,
		ViewState:    params,
		Summary:      dashboard.Summarize(records),
		JobTypes:     types.JobTypes,
		Statuses:     types.Statuses,
		StatusColors: colors,
	}
}

// handleToggleSort flips the direction for the current key or switches to a
// new key ascending.
func (s *Server) handleToggleSort(w http.ResponseWriter, r *http.Request) {
	sess, err := middleware.GetSession(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req sortRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if !listing.ValidSortKey(req.Key) {
		s.errorResponse(w, &listing.ParamError{Name: "key", Value: string(req.Key), Msg: "must be appliedDate or companyName"})
		return
	}

	params, _ := sess.UpdateView(func(current types.ViewParams) (types.ViewParams, error) {
		return listing.ToggleSort(current, req.Key), nil
	})
	s.jsonResponse(w, http.StatusOK, map[string]any{"viewState": params})
}

// handleResetView restores the default search, filters, sort and page.
func (s *Server) handleResetView(w http.ResponseWriter, r *http.Request) {
	sess, err := middleware.GetSession(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	params := sess.ResetView()
	s.jsonResponse(w, http.StatusOK, map[string]any{"viewState": params})
}

// handleCreateApplication validates and saves a form submission.
func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var sub form.Submission
	if err := decodeJSON(r, &sub); err != nil {
		s.errorResponse(w, err)
		return
	}

	res, err := s.form.Submit(r.Context(), sub)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.metrics.ApplicationCreated(s.store.Len())
	w.Header().Set("Location", fmt.Sprintf("/applications/%d", res.Record.ID))
	s.jsonResponse(w, http.StatusCreated, res)
}

// handleGetApplication returns one record.
func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	rec, err := s.store.Get(id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

// handleUpdateApplication merges the supplied fields into a record. PUT and
// PATCH behave the same: absent fields are left alone.
func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var patch types.RecordPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.errorResponse(w, err)
		return
	}
	patch = form.NormalizePatch(patch)
	if err := s.form.Validator().ValidatePatch(patch); err != nil {
		s.errorResponse(w, err)
		return
	}

	rec, err := s.store.Update(id, patch)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.metrics.ApplicationUpdated(s.store.Len())
	s.log.WithField("id", id).Info("application updated")
	s.jsonResponse(w, http.StatusOK, rec)
}

// handleDeleteApplication removes a record.
func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := s.store.Delete(id); err != nil {
		s.errorResponse(w, err)
		return
	}

	s.metrics.ApplicationDeleted(s.store.Len())
	s.log.WithField("id", id).Info("application deleted")
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, &ErrInvalidID{Value: raw}
	}
	return id, nil
}
