package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/lukman83/autovit-sync/internal/telemetry"
)

const (
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
	corsAllowMethods = "POST, GET, OPTIONS"
)

// cors sets the CORS headers on every response and answers preflight
// requests before any routing.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", s.allowOrigin(r.Header.Get("Origin")))
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		if len(s.opts.AllowedOrigins) > 0 {
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.Write([]byte("ok"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowOrigin(origin string) string {
	allowed := s.opts.AllowedOrigins
	if len(allowed) == 0 {
		return "*"
	}
	if origin != "" && slices.Contains(allowed, origin) {
		return origin
	}
	return allowed[0]
}

// observe attaches the request logger and records one log line and one
// metric sample per request.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		r = r.WithContext(s.opts.Logger.WithContext(r.Context()))

		defer func() {
			if p := recover(); p != nil {
				s.opts.Logger.Error().Interface("panic", p).Str("path", r.URL.Path).Msg("handler panicked")
				if !rec.wrote {
					writeError(rec, r, apperr.New(apperr.KindUnknown, msgInternal), msgInternal)
				}
			}

			took := time.Since(start)
			endpoint := r.Pattern
			if endpoint == "" {
				endpoint = "unmatched"
			}
			telemetry.RecordRequest(r.Method, endpoint, rec.status, took)

			ev := s.opts.Logger.Info()
			if rec.status >= 500 {
				ev = s.opts.Logger.Error()
			} else if rec.status >= 400 {
				ev = s.opts.Logger.Warn()
			}
			if rec.err != nil {
				ev = ev.Err(rec.err).Str("kind", apperr.KindOf(rec.err).String())
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("took", took).
				Msg("request")
		}()

		next.ServeHTTP(rec, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
	err    error
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wrote {
		r.status = code
		r.wrote = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wrote = true
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
