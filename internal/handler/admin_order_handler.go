package handler

import (
	"net/http"

	"github.com/Shreyr69/indiport/internal/domain/model"
	"github.com/Shreyr69/indiport/internal/repository"
	"github.com/Shreyr69/indiport/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 注文ステータス変更（seller/admin）と管理者向け一覧
type AdminOrderHandler struct {
	uc *usecase.OrderStatusUsecase
}

func NewAdminOrderHandler(uc *usecase.OrderStatusUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, auth []echo.MiddlewareFunc, sellerOrAdmin, adminOnly echo.MiddlewareFunc) {
	e.PUT("/orders/:id/status", h.updateStatus, withGuard(auth, sellerOrAdmin)...)

	admin := e.Group("/admin", withGuard(auth, adminOnly)...)
	admin.GET("/orders", h.list)
	admin.GET("/audit-logs", h.auditLogs)
}

// page / limit / status / from / to
func parseOrderListFilter(c echo.Context, defLimit int) (repository.OrderListFilter, string) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return repository.OrderListFilter{}, "invalid page"
	}
	limit, ok := queryInt(c, "limit", defLimit)
	if !ok {
		return repository.OrderListFilter{}, "invalid limit"
	}

	f := repository.OrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
	}

	if v := c.QueryParam("from"); v != "" {
		t, ok := usecase.ParseDateTimeRFC3339(v)
		if !ok {
			return repository.OrderListFilter{}, "invalid from"
		}
		f.From = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, ok := usecase.ParseDateTimeRFC3339(v)
		if !ok {
			return repository.OrderListFilter{}, "invalid to"
		}
		f.To = t
	}
	return f, ""
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	f, msg := parseOrderListFilter(c, 50)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}

	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	// 監査ログのactorになる
	actor, ok := getProfileFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.UpdateStatus(
		c.Request().Context(),
		actor,
		c.Param("id"),
		usecase.UpdateOrderStatusInput{Status: req.Status},
	); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminOrderHandler) auditLogs(c echo.Context) error {
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
	}

	f := repository.AuditLogFilter{Limit: limit, Offset: offset}
	if v := c.QueryParam("actor_user_id"); v != "" {
		f.ActorUserID = &v
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		f.Action = &a
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}
	if v := c.QueryParam("resource_id"); v != "" {
		f.ResourceID = &v
	}
	if v := c.QueryParam("from"); v != "" {
		t, ok := usecase.ParseDateTimeRFC3339(v)
		if !ok {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
		}
		f.CreatedFrom = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, ok := usecase.ParseDateTimeRFC3339(v)
		if !ok {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
		}
		f.CreatedTo = t
	}

	out, err := h.uc.ListAuditLogs(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
