package handler

import (
	"net/http"

	"github.com/Shreyr69/indiport/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type DeliveryHandler struct {
	uc *usecase.DeliveryUsecase
}

func NewDeliveryHandler(uc *usecase.DeliveryUsecase) *DeliveryHandler {
	return &DeliveryHandler{uc: uc}
}

// 配送方法は公開（参照データ）
func (h *DeliveryHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/delivery-methods", h.list)
}

// ?subtotal= があれば送料無料の対象かを付けて返す
func (h *DeliveryHandler) list(c echo.Context) error {
	subtotal := decimal.Zero
	if v := c.QueryParam("subtotal"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid subtotal"})
		}
		subtotal = d
	}

	out, err := h.uc.ListOptions(c.Request().Context(), subtotal)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
