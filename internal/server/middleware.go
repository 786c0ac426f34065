package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gangsheet/pkg/buildinfo"
	"github.com/matzehuels/gangsheet/pkg/observability"
)

// instrument logs each request and reports it to the HTTP hooks. The route
// pattern is only known once chi has matched it, so both hook events fire
// after the handler returns.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("Server", buildinfo.UserAgent())

		next.ServeHTTP(ww, r)

		route := routePattern(r)
		elapsed := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, status, elapsed)

		logger := s.logger(r)
		fields := []any{"method", r.Method, "route", route, "status", status, "bytes", ww.BytesWritten(), "elapsed", elapsed.Round(time.Millisecond)}
		if status >= http.StatusInternalServerError {
			logger.Error("request", fields...)
		} else {
			logger.Debug("request", fields...)
		}
	})
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
