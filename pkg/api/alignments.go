package api

import (
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/siteworks/drawalign/pkg/alignment"
	"github.com/siteworks/drawalign/pkg/errors"
	"github.com/siteworks/drawalign/pkg/geometry"
	"github.com/siteworks/drawalign/pkg/httputil"
	"github.com/siteworks/drawalign/pkg/store"
)

type saveAlignmentRequest struct {
	CandidateDrawingID string             `json:"candidateDrawingId"`
	Transform          geometry.Transform `json:"transform"`
	Method             alignment.Method   `json:"method"`
	Points             *alignment.Picked  `json:"alignmentPoints,omitempty"`
}

type alignmentResponse struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message,omitempty"`
	Alignment *store.Record `json:"alignment"`
}

type deleteResponse struct {
	Success bool `json:"success"`
	Deleted bool `json:"deleted"`
}

type listResponse struct {
	Success    bool           `json:"success"`
	Alignments []store.Record `json:"alignments"`
}

func (s *Server) handleSaveAlignment(w http.ResponseWriter, r *http.Request) {
	base := chi.URLParam(r, "drawing")
	var req saveAlignmentRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.CandidateDrawingID == "" {
		httputil.WriteError(w, errors.New(errors.ErrCodeInvalidDrawingID, "candidateDrawingId is required"))
		return
	}
	method := req.Method
	if method == "" {
		method = alignment.MethodManual
	}

	d := alignment.SaveData{Transform: req.Transform, Method: method}
	if req.Points != nil {
		d.Points = *req.Points
	}
	rec, err := s.store.Save(r.Context(), store.FromSave(base, req.CandidateDrawingID, d))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	s.logger.Info("alignment saved", "base", base, "candidate", rec.CandidateDrawingID, "method", rec.Method)
	httputil.WriteJSON(w, http.StatusOK, alignmentResponse{
		Success:   true,
		Message:   "Alignment saved successfully",
		Alignment: &rec,
	})
}

func (s *Server) handleGetAlignment(w http.ResponseWriter, r *http.Request) {
	base, candidate := chi.URLParam(r, "drawing"), chi.URLParam(r, "candidate")
	rec, err := s.store.Get(r.Context(), base, candidate)
	if stderrors.Is(err, store.ErrNotFound) {
		httputil.WriteJSON(w, http.StatusOK, alignmentResponse{Success: true})
		return
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, alignmentResponse{Success: true, Alignment: &rec})
}

func (s *Server) handleDeleteAlignment(w http.ResponseWriter, r *http.Request) {
	base, candidate := chi.URLParam(r, "drawing"), chi.URLParam(r, "candidate")
	deleted, err := s.store.Delete(r.Context(), base, candidate)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if deleted {
		s.logger.Info("alignment deleted", "base", base, "candidate", candidate)
	}
	httputil.WriteJSON(w, http.StatusOK, deleteResponse{Success: true, Deleted: deleted})
}

func (s *Server) handleListAlignments(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context(), chi.URLParam(r, "drawing"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Success: true, Alignments: recs})
}
