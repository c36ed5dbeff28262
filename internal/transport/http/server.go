package transporthttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"newssentiment/internal/config"
	"newssentiment/internal/observability"
	"newssentiment/internal/search"
	"newssentiment/internal/sentiment"
)

const (
	msgNoDocuments        = "No documents found"
	msgNoDocumentsInIndex = "No documents found in index"
)

type Server struct {
	svc          *sentiment.Service
	defaultIndex string
	corsOrigins  []string
	logger       *zap.Logger
	metrics      *observability.Collector
	pinger       search.Pinger
}

// NewServer wires the HTTP surface. metrics and pinger are optional.
func NewServer(svc *sentiment.Service, cfg config.Config, logger *zap.Logger, metrics *observability.Collector, pinger search.Pinger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		svc:          svc,
		defaultIndex: cfg.Search.DefaultIndex,
		corsOrigins:  origins,
		logger:       logger,
		metrics:      metrics,
		pinger:       pinger,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(requestID)
	r.Use(requestLogger(s.logger))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method Not Allowed"})
	})

	r.Get("/healthz", s.health)
	r.Get("/readyz", s.ready)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/search", func(r chi.Router) {
		getWithSlash(r, "/news-details", s.handleNewsDetails)
		getWithSlash(r, "/sentiment-analysis", s.handleSentimentAnalysis)
		getWithSlash(r, "/timeline", s.handleTimeline(sentiment.FullTimeline))
		getWithSlash(r, "/latest-dual-sentiment-by-hour", s.handleTimeline(sentiment.CompactTimeline))
	})

	mountDocs(r)

	return r
}

// getWithSlash answers both /path and /path/.
func getWithSlash(r chi.Router, path string, h http.HandlerFunc) {
	r.Get(path, h)
	r.Get(path+"/", h)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			s.logger.Warn("search engine not ready", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "detail": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleNewsDetails(w http.ResponseWriter, r *http.Request) {
	index := s.indexParam(r)
	doc, err := s.svc.NewsDetails(r.Context(), index)
	s.writeResult(w, r, index, doc, err, msgNoDocuments)
}

func (s *Server) handleSentimentAnalysis(w http.ResponseWriter, r *http.Request) {
	index := s.indexParam(r)
	totals, err := s.svc.SentimentTotals(r.Context(), index)
	s.writeResult(w, r, index, totals, err, msgNoDocuments)
}

func (s *Server) handleTimeline(v sentiment.TimelineVariant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index := s.indexParam(r)
		result, err := s.svc.Timeline(r.Context(), index, v)
		s.writeResult(w, r, index, result, err, msgNoDocumentsInIndex)
	}
}

func (s *Server) indexParam(r *http.Request) string {
	if index := r.URL.Query().Get("index_name"); index != "" {
		return index
	}
	return s.defaultIndex
}

// writeResult is the only place service outcomes become HTTP responses.
// Empty data and an out-of-scope day are answered with 200 and a message.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, index string, result any, err error, emptyMessage string) {
	if err == nil {
		writeJSON(w, http.StatusOK, result)
		return
	}

	var scope *sentiment.OutOfScopeError
	switch {
	case errors.Is(err, sentiment.ErrNoData):
		writeJSON(w, http.StatusOK, map[string]string{"message": emptyMessage})
	case errors.As(err, &scope):
		writeJSON(w, http.StatusOK, map[string]string{"message": scope.Message()})
	default:
		s.logger.Error("request failed",
			zap.Error(err),
			zap.String("index", index),
			zap.String("path", r.URL.Path),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// nothing we can do on failure; connection likely closed
	_ = json.NewEncoder(w).Encode(payload)
}
