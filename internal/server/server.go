package server

import (
	"net/http"

	"github.com/Shreyr69/indiport/internal/config"
	"github.com/Shreyr69/indiport/internal/middleware"
	"github.com/Shreyr69/indiport/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// New はミドルウェアとルートを載せた echo を返す
func New(cfg config.Config, log zerolog.Logger, profiles repository.ProfileRepository, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))

	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	auth := []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg),
		middleware.ProfileLoader(profiles),
	}
	RegisterRoutes(e, h, auth)

	return e
}

func Start(e *echo.Echo, addr string) error {
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
