package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agrokadry/agrojob-core/internal/core/access"
)

type identityContextKey struct{}

// IdentityMiddleware は上位の認証基盤が付与する信頼済みヘッダーから
// リクエスト元の身元を復元し、コンテキストへ格納します。X-User-Id が
// 空の場合は匿名リクエストとして扱います。
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := access.Identity{
			UserID: strings.TrimSpace(r.Header.Get("X-User-Id")),
		}
		for _, role := range strings.Split(r.Header.Get("X-User-Roles"), ",") {
			if strings.EqualFold(strings.TrimSpace(role), "admin") {
				identity.Admin = true
			}
		}

		ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext はコンテキストから身元を取り出します。
func IdentityFromContext(ctx context.Context) access.Identity {
	identity, _ := ctx.Value(identityContextKey{}).(access.Identity)
	return identity
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware はリクエストごとに ID を採番し、処理結果を構造化
// ログへ出力します。
func LoggingMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			start := time.Now()
			next.ServeHTTP(recorder, r)

			logger.Info().
				Str("request_id", requestID).
				Str("method", r.Method).
				Stringer("url", r.URL).
				Int("status", recorder.status).
				Dur("duration", time.Since(start)).
				Msg("req")
		})
	}
}
