package server

import (
	"github.com/Shreyr69/indiport/internal/domain/model"
	"github.com/Shreyr69/indiport/internal/handler"
	"github.com/Shreyr69/indiport/internal/middleware"

	"github.com/labstack/echo/v4"
)

// Handlers はルートに載せるハンドラ一式
type Handlers struct {
	Product      *handler.ProductHandler
	Category     *handler.CategoryHandler
	Review       *handler.ReviewHandler
	Delivery     *handler.DeliveryHandler
	Cart         *handler.CartHandler
	SavedProduct *handler.SavedProductHandler
	Address      *handler.AddressHandler
	Checkout     *handler.CheckoutHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminProduct *handler.AdminProductHandler
	RFQ          *handler.RFQHandler
}

// auth は「JWT検証 → プロフィール読み込み」の順で渡す
func RegisterRoutes(e *echo.Echo, h Handlers, auth []echo.MiddlewareFunc) {
	sellerOnly := middleware.RoleGuard(model.RoleSeller)
	sellerOrAdmin := middleware.RoleGuard(model.RoleSeller, model.RoleAdmin)
	adminOnly := middleware.RoleGuard(model.RoleAdmin)

	//公開
	h.Product.RegisterRoutes(e)
	h.Category.RegisterRoutes(e)
	h.Delivery.RegisterRoutes(e)
	h.Review.RegisterRoutes(e, auth...)

	//ログイン必須
	h.Cart.RegisterRoutes(e, auth...)
	h.SavedProduct.RegisterRoutes(e, auth...)
	h.Address.RegisterRoutes(e, auth...)
	h.Checkout.RegisterRoutes(e, auth...)
	h.Order.RegisterRoutes(e, auth, sellerOnly)
	h.RFQ.RegisterRoutes(e, auth, sellerOnly)

	//seller / admin
	h.AdminOrder.RegisterRoutes(e, auth, sellerOrAdmin, adminOnly)
	h.AdminProduct.RegisterRoutes(e, auth, sellerOnly, adminOnly)
}
