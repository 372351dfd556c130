package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ---------------------------------------------------------------------------
// HTTP Server
// ---------------------------------------------------------------------------

type server struct {
	records  recordSource
	composer *Composer
	logger   *log.Logger
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/wtns/{id}/pdf", s.notePDF)
	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(withLogger(r.Context(), s.logger)))
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "took", time.Since(start).Round(time.Millisecond))
	})
}

// notePDF composes the note and streams it as an attachment. Add ?inline=1
// to open it in the browser instead.
func (s *server) notePDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, job, err := loadNote(r.Context(), s.records, id)
	if errors.Is(err, errNotFound) {
		http.Error(w, "waste transfer note not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("failed to load note", "id", id, "err", err)
		http.Error(w, "failed to load waste transfer note", http.StatusInternalServerError)
		return
	}

	doc := s.composer.Compose(note, job)
	data, err := doc.Bytes()
	if err != nil {
		s.logger.Error("failed to render note", "id", id, "err", err)
		http.Error(w, "failed to render waste transfer note", http.StatusInternalServerError)
		return
	}

	disposition := "attachment"
	if r.URL.Query().Get("inline") == "1" {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Layout-Variant", doc.Variant.Name)
	_, _ = w.Write(data)
}

// listenAndServe runs the server until ctx is cancelled.
func (s *server) listenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
