package api

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/siteworks/drawalign/pkg/alignment"
	"github.com/siteworks/drawalign/pkg/errors"
	"github.com/siteworks/drawalign/pkg/geometry"
	"github.com/siteworks/drawalign/pkg/httputil"
	"github.com/siteworks/drawalign/pkg/observability"
	"github.com/siteworks/drawalign/pkg/session"
	"github.com/siteworks/drawalign/pkg/store"
)

type createSessionRequest struct {
	BaseDrawingID      string `json:"baseDrawingId,omitempty"`
	CandidateDrawingID string `json:"candidateDrawingId,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := httputil.DecodeJSON(r, &req, true); err != nil {
		httputil.WriteError(w, err)
		return
	}
	for _, id := range []string{req.BaseDrawingID, req.CandidateDrawingID} {
		if id == "" {
			continue
		}
		if err := errors.ValidateDrawingID(id); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	info := s.sessions.Create(req.BaseDrawingID, req.CandidateDrawingID)
	s.logger.Debug("session created", "id", info.ID, "base", info.BaseDrawingID, "candidate", info.CandidateDrawingID)
	httputil.WriteJSON(w, http.StatusCreated, info)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sessions.Delete(id) {
		httputil.WriteError(w, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, deleteResponse{Success: true, Deleted: true})
}

func (s *Server) handleSaveData(w http.ResponseWriter, r *http.Request) {
	var data alignment.SaveData
	err := s.sessions.With(chi.URLParam(r, "id"), func(sess *session.Session) error {
		data = sess.Controller.ForSave()
		return nil
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, data)
}

// action decodes its own body (if any) and drives the controller. It runs
// under the session lock.
type action func(r *http.Request, c *alignment.Controller) error

func (s *Server) sessionAction(act action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var info session.Info
		err := s.sessions.With(chi.URLParam(r, "id"), func(sess *session.Session) error {
			before := sess.Controller.State()
			if err := act(r, sess.Controller); err != nil {
				return err
			}
			if before == alignment.PickingCandidateB && sess.Controller.IsAligned() {
				t := sess.Controller.Transform()
				observability.Align().OnTransformComputed(r.Context(), "session", t.Scale, t.Rotation)
			}
			info = sess.Info()
			return nil
		})
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, info)
	}
}

func actionStart(_ *http.Request, c *alignment.Controller) error {
	c.Start()
	return nil
}

func actionReset(_ *http.Request, c *alignment.Controller) error {
	c.Reset()
	return nil
}

func actionUndo(_ *http.Request, c *alignment.Controller) error {
	c.Undo()
	return nil
}

type clickRequest struct {
	Layer string           `json:"layer"`
	Point geometry.Point2D `json:"point"`
}

func actionClick(r *http.Request, c *alignment.Controller) error {
	var req clickRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		return err
	}
	layer, ok := alignment.ParseLayer(req.Layer)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "layer must be base or candidate, got %q", req.Layer)
	}
	if err := errors.ValidatePoint(req.Point); err != nil {
		return err
	}
	c.Click(layer, req.Point)
	return nil
}

type nudgeRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

func actionNudge(r *http.Request, c *alignment.Controller) error {
	var req nudgeRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		return err
	}
	if err := errors.ValidatePoint(geometry.Pt(req.DX, req.DY)); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "nudge must be finite")
	}
	c.Nudge(req.DX, req.DY)
	return nil
}

type rotateRequest struct {
	Degrees float64 `json:"degrees"`
}

func actionRotate(r *http.Request, c *alignment.Controller) error {
	var req rotateRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		return err
	}
	if err := errors.ValidatePoint(geometry.Pt(req.Degrees, 0)); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "degrees must be finite")
	}
	c.Rotate(req.Degrees)
	return nil
}

type scaleRequest struct {
	Delta float64 `json:"delta"`
}

func actionScale(r *http.Request, c *alignment.Controller) error {
	var req scaleRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		return err
	}
	if err := errors.ValidatePoint(geometry.Pt(req.Delta, 0)); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "delta must be finite")
	}
	c.Rescale(req.Delta)
	return nil
}

func actionLoad(r *http.Request, c *alignment.Controller) error {
	var saved alignment.Saved
	if err := httputil.DecodeJSON(r, &saved, false); err != nil {
		return err
	}
	if saved.Method == "" {
		saved.Method = alignment.MethodManual
	}
	if err := errors.ValidateMethod(saved.Method); err != nil {
		return err
	}
	if err := errors.ValidateTransform(saved.Transform()); err != nil {
		return err
	}
	c.LoadSaved(saved)
	return nil
}

type sessionAutoAlignResponse struct {
	Result  geometry.AutoAlignResult `json:"result"`
	Session session.Info             `json:"session"`
}

func (s *Server) handleSessionAutoAlign(w http.ResponseWriter, r *http.Request) {
	var req autoAlignRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	var resp sessionAutoAlignResponse
	err := s.sessions.With(chi.URLParam(r, "id"), func(sess *session.Session) error {
		start := time.Now()
		if req.Tolerance > 0 {
			resp.Result = sess.Controller.AutoAlignTolerance(req.Base, req.Candidate, req.Tolerance)
		} else {
			resp.Result = sess.Controller.AutoAlign(req.Base, req.Candidate)
		}
		observability.Align().OnAutoAlign(r.Context(), resp.Result.Success, time.Since(start))
		resp.Session = sess.Info()
		return nil
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// requirePair returns the session's drawing pair or an error when either is unset.
func requirePair(sess *session.Session) (string, string, error) {
	if sess.BaseDrawingID == "" || sess.CandidateDrawingID == "" {
		return "", "", errors.New(errors.ErrCodeInvalidDrawingID, "session has no drawing pair; create it with baseDrawingId and candidateDrawingId")
	}
	return sess.BaseDrawingID, sess.CandidateDrawingID, nil
}

func (s *Server) handleSessionSave(w http.ResponseWriter, r *http.Request) {
	var rec store.Record
	err := s.sessions.With(chi.URLParam(r, "id"), func(sess *session.Session) error {
		base, candidate, err := requirePair(sess)
		if err != nil {
			return err
		}
		if !sess.Controller.IsAligned() {
			return errors.New(errors.ErrCodeInvalidInput, "session is %s; only an aligned session can be saved", sess.Controller.State())
		}
		rec, err = s.store.Save(r.Context(), store.FromSave(base, candidate, sess.Controller.ForSave()))
		return err
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	s.logger.Info("alignment saved", "base", rec.BaseDrawingID, "candidate", rec.CandidateDrawingID, "method", rec.Method)
	httputil.WriteJSON(w, http.StatusOK, alignmentResponse{
		Success:   true,
		Message:   "Alignment saved successfully",
		Alignment: &rec,
	})
}

func (s *Server) handleSessionRestore(w http.ResponseWriter, r *http.Request) {
	var info session.Info
	err := s.sessions.With(chi.URLParam(r, "id"), func(sess *session.Session) error {
		base, candidate, err := requirePair(sess)
		if err != nil {
			return err
		}
		rec, err := s.store.Get(r.Context(), base, candidate)
		if err != nil {
			if stderrors.Is(err, store.ErrNotFound) {
				return errors.Wrap(errors.ErrCodeAlignmentNotFound, err, "no saved alignment for %s -> %s", base, candidate)
			}
			return err
		}
		sess.Controller.LoadSaved(rec.Saved())
		info = sess.Info()
		return nil
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, info)
}
