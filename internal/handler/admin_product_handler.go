package handler

import (
	"net/http"

	"github.com/Shreyr69/indiport/internal/domain/model"
	"github.com/Shreyr69/indiport/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ProductStatusUpdateRequest は承認/却下の入力です。
type ProductStatusUpdateRequest struct {
	Status string `json:"status"`
}

// /seller/products（出品・削除）と /admin/products（承認）をまとめる
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, auth []echo.MiddlewareFunc, sellerOnly, adminOnly echo.MiddlewareFunc) {
	seller := e.Group("/seller/products", withGuard(auth, sellerOnly)...)
	seller.GET("", h.listMine)
	seller.POST("", h.createProduct)
	seller.DELETE("/:id", h.deleteProduct)

	//既存の /admin グループとは別に直接登録
	admin := withGuard(auth, adminOnly)
	e.GET("/admin/products", h.adminList, admin...)
	e.PUT("/admin/products/:id/status", h.updateStatus, admin...)
}

func (h *AdminProductHandler) listMine(c echo.Context) error {
	sellerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	out, err := h.uc.ListSellerProducts(c.Request().Context(), sellerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req usecase.CreateProductInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	sellerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	p, err := h.uc.CreateProduct(c.Request().Context(), sellerID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	sellerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), sellerID, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *AdminProductHandler) adminList(c echo.Context) error {
	out, err := h.uc.AdminListProducts(c.Request().Context(), model.ProductStatus(c.QueryParam("status")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) updateStatus(c echo.Context) error {
	var req ProductStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.AdminUpdateProductStatus(c.Request().Context(), adminID, c.Param("id"), model.ProductStatus(req.Status)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "status updated"})
}
