// Package middlewarectx содержит HTTP middleware шлюза: проверку активной
// сессии, проверку прав администратора и лимитирование запросов.
//
// Авторизация опирается на снапшот менеджера сессии: шлюз локальный,
// токен хранит менеджер, поэтому заголовок Authorization от фронтенда
// не требуется и не проверяется.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/jobper/jobper-dashboard/internal/http/response"
	"github.com/jobper/jobper-dashboard/internal/models"
	"github.com/jobper/jobper-dashboard/internal/session"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// CtxUser — ключ профиля пользователя в контексте запроса.
const CtxUser Key = "user"

// SessionSource источник снапшота сессии.
type SessionSource interface {
	Snapshot() session.Snapshot
}

// UserFromContext возвращает профиль пользователя, положенный SessionMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(CtxUser).(*models.User)
	return u, ok
}

// SessionMiddleware возвращает middleware, пропускающий запрос только при
// установленной сессии. Профиль пользователя кладётся в контекст запроса.
func SessionMiddleware(sess SessionSource, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"

			snap := sess.Snapshot()
			if snap.State != session.StateAuthenticated || snap.User == nil {
				log.Warn("request without active session",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("state", string(snap.State)))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("no active session"))
				return
			}
			ctx := context.WithValue(r.Context(), CtxUser, snap.User)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminMiddleware пропускает запрос только от администратора.
// Ставится после SessionMiddleware.
func AdminMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AdminMiddleware"

			user, ok := UserFromContext(r.Context())
			if !ok || !user.IsAdmin {
				log.Warn("admin access denied",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
