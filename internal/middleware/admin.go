package middleware

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/petstore/internal/model"
)

// adminUsername は管理者アカウントのユーザー名。
// 管理者判定はユーザー名の一致のみで行う。ロール属性は存在しない。
const adminUsername = "admin"

// NewAdminMiddleware は管理者専用ルートのガードを返す。
// セッションミドルウェアの後に配置すること。
// 認証済みユーザー名がadminでないリクエストには403 Forbiddenを返す。
func NewAdminMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, err := UsernameFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewNotAuthenticatedError())
				return
			}

			if username != adminUsername {
				slog.Warn("admin route rejected",
					slog.String("username", username),
					slog.String("path", r.URL.Path),
				)
				WriteErrorResponse(w, http.StatusForbidden, model.NewAdminRequiredError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
