// Package api exposes the operator HTTP surface: upload a lead file, then
// run a batch over it.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/outbound-dialer/internal/dialer"
	"github.com/sells-group/outbound-dialer/internal/model"
)

// maxUploadBytes caps the size of an uploaded lead file.
const maxUploadBytes = 10 << 20

// Uploader persists uploaded lead files.
type Uploader interface {
	SaveUpload(ctx context.Context, filename string, content []byte) (*model.Upload, error)
}

// BatchRunner runs one batch over an upload, the latest one when id is empty.
type BatchRunner interface {
	Run(ctx context.Context, uploadID string) (*dialer.Result, error)
}

// Server routes operator requests to the upload store and batch runner.
type Server struct {
	uploads Uploader
	runner  BatchRunner
}

// NewServer creates a Server.
func NewServer(uploads Uploader, runner BatchRunner) *Server {
	return &Server{uploads: uploads, runner: runner}
}

// Router returns the HTTP handler for all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/upload", s.handleUpload)
	r.Post("/run-script", s.handleRunScript)

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
