package middleware

import (
	"errors"
	"net/http"

	"github.com/Shreyr69/indiport/internal/domain/model"
	"github.com/Shreyr69/indiport/internal/repository"

	"github.com/labstack/echo/v4"
)

// AuthJWTが入れたuser_idでプロフィール（ロール）をDBから読む。
// ロールはトークンではなくDBを正とする。
func ProfileLoader(profiles repository.ProfileRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたuser_id を取得する
			userID, ok := c.Get(CtxUserIDKey).(string)
			if !ok || userID == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//DBから最新のプロフィールを取得する
			p, err := profiles.FindByID(c.Request().Context(), userID)
			if errors.Is(err, repository.ErrNotFound) {
				//プロフィール未作成は購入者扱い
				p = model.Profile{ID: userID, Role: model.RoleBuyer}
			} else if err != nil {
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			c.Set(CtxProfileKey, p)
			c.Set(CtxUserRoleKey, p.Role)

			return next(c)
		}
	}
}
