// Package filter is the tweet filter: an HTTP service that looks for a YouTube link in the text of a tweet and, if
// there is one, has the slides backend generate slides for it.
package filter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"go.uber.org/zap"

	"github.com/alanbriolat/video-slides"
	"github.com/alanbriolat/video-slides/internal/slides"
)

const shutdownTimeout = 10 * time.Second

// SlidesGenerator is the part of *slides.Client the filter needs.
type SlidesGenerator interface {
	GenerateSlides(ctx context.Context, id video_slides.Identifier) (slides.Slides, error)
}

type Server struct {
	apis map[string]http.Handler
	log  *zap.SugaredLogger
}

func NewServer(generator SlidesGenerator, registry *video_slides.ProviderRegistry) *Server {
	log := zap.S().Named("filter")
	return &Server{
		apis: map[string]http.Handler{
			"api": NewTweetAPI(generator, registry, log),
		},
		log: log,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	originalPath := r.URL.Path
	rec := httptest.NewRecorder() // records the response to be able to mix writing headers and content

	head, tail := ShiftPath(r.URL.Path)
	if head == "" {
		Index(rec)
	} else if api, ok := s.apis[head]; !ok {
		Error(rec, http.StatusNotFound, "Not found")
	} else {
		r.URL.Path = tail
		api.ServeHTTP(rec, r)
	}

	returnResponse(w, rec)
	s.log.Infow("request served", "method", r.Method, "path", originalPath, "status", rec.Code)
}

func returnResponse(w http.ResponseWriter, rec *httptest.ResponseRecorder) {
	for k, v := range rec.Header() {
		w.Header()[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rec.Code)
	w.Write(rec.Body.Bytes())
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		s.log.Infow("listening", "addr", addr)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
