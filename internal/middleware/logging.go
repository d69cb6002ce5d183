package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AnshRaj112/soullog/pkg/clientip"
)

// RequestLogger logs one line per request. Server errors are logged at error level.
func RequestLogger(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				fields := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"ip", clientip.RealClientIP(r),
					"request_id", chimw.GetReqID(r.Context()),
				}
				if ww.Status() >= http.StatusInternalServerError {
					log.Errorw("request", fields...)
					return
				}
				log.Infow("request", fields...)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
