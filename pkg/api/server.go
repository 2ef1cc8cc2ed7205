// Package api serves the alignment engine, the saved-alignment store and
// interactive alignment sessions over HTTP.
//
// Routes are grouped under /v1:
//
//	POST   /v1/transform                                  points -> transform
//	POST   /v1/transform/inverse                          transform -> transform
//	POST   /v1/transform/apply                            {point, transform} -> point
//	POST   /v1/auto-align                                 {base, candidate, tolerance} -> result
//	POST   /v1/drawings/{drawing}/alignment               save
//	GET    /v1/drawings/{drawing}/alignment/{candidate}   get (null when absent)
//	DELETE /v1/drawings/{drawing}/alignment/{candidate}   delete
//	GET    /v1/drawings/{drawing}/alignments              list
//	POST   /v1/sessions                                   create
//	GET    /v1/sessions/{id}                              view
//	DELETE /v1/sessions/{id}                              drop
//	POST   /v1/sessions/{id}/{action}                     drive the controller
//	GET    /v1/sessions/{id}/save-data                    controller.ForSave()
//
// Errors use the httputil envelope.
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/siteworks/drawalign/pkg/buildinfo"
	"github.com/siteworks/drawalign/pkg/config"
	"github.com/siteworks/drawalign/pkg/httputil"
	"github.com/siteworks/drawalign/pkg/session"
	"github.com/siteworks/drawalign/pkg/store"
)

// Options configures a Server. Store and Sessions are required.
type Options struct {
	Store    store.Store
	Sessions *session.Registry
	Align    config.Align
	Logger   *log.Logger
}

// Server is the HTTP front end.
type Server struct {
	store    store.Store
	sessions *session.Registry
	align    config.Align
	logger   *log.Logger
}

// New builds a Server. A zero Align uses config.Default().Align.
func New(opts Options) *Server {
	s := &Server{
		store:    opts.Store,
		sessions: opts.Sessions,
		align:    opts.Align,
		logger:   opts.Logger,
	}
	if s.align == (config.Align{}) {
		s.align = config.Default().Align
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// Handler returns the routed handler with middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestLogger(s.logger))
	r.Use(httputil.Hooks)
	r.Use(middleware.Recoverer)

	r.NotFound(httputil.NotFound)
	r.MethodNotAllowed(httputil.MethodNotAllowed)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/transform", s.handleTransform)
		r.Post("/transform/inverse", s.handleInverse)
		r.Post("/transform/apply", s.handleApply)
		r.Post("/auto-align", s.handleAutoAlign)

		r.Route("/drawings/{drawing}", func(r chi.Router) {
			r.Post("/alignment", s.handleSaveAlignment)
			r.Get("/alignment/{candidate}", s.handleGetAlignment)
			r.Delete("/alignment/{candidate}", s.handleDeleteAlignment)
			r.Get("/alignments", s.handleListAlignments)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Get("/save-data", s.handleSaveData)
				r.Post("/start", s.sessionAction(actionStart))
				r.Post("/reset", s.sessionAction(actionReset))
				r.Post("/undo", s.sessionAction(actionUndo))
				r.Post("/click", s.sessionAction(actionClick))
				r.Post("/nudge", s.sessionAction(actionNudge))
				r.Post("/rotate", s.sessionAction(actionRotate))
				r.Post("/scale", s.sessionAction(actionScale))
				r.Post("/load", s.sessionAction(actionLoad))
				r.Post("/auto-align", s.handleSessionAutoAlign)
				r.Post("/save", s.handleSessionSave)
				r.Post("/restore", s.handleSessionRestore)
			})
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. Expired sessions are swept once a minute meanwhile.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sessions.Run(sweepCtx, time.Minute, s.logger)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "version", buildinfo.Version)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type healthResponse struct {
	Status   string         `json:"status"`
	Build    buildinfo.Info `json:"build"`
	Sessions int            `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Build:    buildinfo.Get(),
		Sessions: s.sessions.Len(),
	})
}
