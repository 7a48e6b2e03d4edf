package handler

import (
	"errors"
	"net/http"

	"github.com/Shreyr69/indiport/internal/domain/checkout"
	"github.com/Shreyr69/indiport/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AddressHandler struct {
	uc *usecase.AddressUsecase
}

func NewAddressHandler(uc *usecase.AddressUsecase) *AddressHandler {
	return &AddressHandler{uc: uc}
}

func (h *AddressHandler) RegisterRoutes(e *echo.Echo, auth ...echo.MiddlewareFunc) {
	g := e.Group("/addresses", auth...)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.POST("/:id/default", h.SetDefault)
}

func (h *AddressHandler) List(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return addrWriteError(c, http.StatusUnauthorized, "unauthorized")
	}

	list, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return addrWriteUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, list)
}

func (h *AddressHandler) Create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return addrWriteError(c, http.StatusUnauthorized, "unauthorized")
	}

	var req usecase.AddressCreateRequest
	if err := c.Bind(&req); err != nil {
		return addrWriteError(c, http.StatusBadRequest, "validation error")
	}

	created, err := h.uc.Create(c.Request().Context(), userID, req)
	if err != nil {
		return addrWriteUsecaseError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

func (h *AddressHandler) SetDefault(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return addrWriteError(c, http.StatusUnauthorized, "unauthorized")
	}

	if err := h.uc.SetDefault(c.Request().Context(), userID, c.Param("id")); err != nil {
		return addrWriteUsecaseError(c, err)
	}

	// Success は {message:string} に寄せる
	return c.JSON(http.StatusOK, map[string]string{"message": "default set"})
}

// ------- AddressHandler専用 helper -------

func addrWriteError(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

func addrWriteUsecaseError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, checkout.ErrValidation):
		//どの項目かはメッセージで返す
		return addrWriteError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrUnauthorized):
		return addrWriteError(c, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, usecase.ErrForbidden):
		return addrWriteError(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, usecase.ErrNotFound):
		return addrWriteError(c, http.StatusNotFound, "not found")
	case errors.Is(err, checkout.ErrRemoteFetch):
		return addrWriteError(c, http.StatusServiceUnavailable, "could not load addresses, please retry")
	default:
		return addrWriteError(c, http.StatusInternalServerError, "internal error")
	}
}
