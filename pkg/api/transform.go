package api

import (
	"net/http"
	"time"

	"github.com/siteworks/drawalign/pkg/errors"
	"github.com/siteworks/drawalign/pkg/geometry"
	"github.com/siteworks/drawalign/pkg/httputil"
	"github.com/siteworks/drawalign/pkg/observability"
)

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	var pts geometry.AlignmentPoints
	if err := httputil.DecodeJSON(r, &pts, false); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := errors.ValidatePoints(pts); err != nil {
		httputil.WriteError(w, err)
		return
	}

	t := geometry.ComputeAlignment(pts)
	observability.Align().OnTransformComputed(r.Context(), "points", t.Scale, t.Rotation)
	httputil.WriteJSON(w, http.StatusOK, t)
}

func (s *Server) handleInverse(w http.ResponseWriter, r *http.Request) {
	var t geometry.Transform
	if err := httputil.DecodeJSON(r, &t, false); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := errors.ValidateTransform(t); err != nil {
		httputil.WriteError(w, err)
		return
	}

	inv := geometry.Inverse(t)
	observability.Align().OnTransformComputed(r.Context(), "inverse", inv.Scale, inv.Rotation)
	httputil.WriteJSON(w, http.StatusOK, inv)
}

type applyRequest struct {
	Point     geometry.Point2D   `json:"point"`
	Transform geometry.Transform `json:"transform"`
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := errors.ValidatePoint(req.Point); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := errors.ValidateTransform(req.Transform); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, geometry.Apply(req.Point, req.Transform))
}

type autoAlignRequest struct {
	Base      geometry.Size `json:"base"`
	Candidate geometry.Size `json:"candidate"`
	Tolerance float64       `json:"tolerance,omitempty"`
}

func (r autoAlignRequest) validate() error {
	if err := errors.ValidateSize(r.Base); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "base: %s", errors.UserMessage(err))
	}
	if err := errors.ValidateSize(r.Candidate); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "candidate: %s", errors.UserMessage(err))
	}
	return errors.ValidateTolerance(r.Tolerance)
}

func (s *Server) handleAutoAlign(w http.ResponseWriter, r *http.Request) {
	var req autoAlignRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	tol := req.Tolerance
	if tol == 0 {
		tol = s.align.Tolerance
	}
	start := time.Now()
	res := geometry.AutoAlign(req.Base, req.Candidate, tol)
	observability.Align().OnAutoAlign(r.Context(), res.Success, time.Since(start))
	httputil.WriteJSON(w, http.StatusOK, res)
}
