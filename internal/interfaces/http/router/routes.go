package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sisl/eshop/internal/interfaces/http/handler"
)

// Handlers bundles every HTTP handler of the shop
type Handlers struct {
	System         *handler.SystemHandler
	Category       *handler.CategoryHandler
	Brand          *handler.BrandHandler
	Banner         *handler.BannerHandler
	Product        *handler.ProductHandler
	Storefront     *handler.StorefrontHandler
	Quotation      *handler.QuotationHandler
	AdminQuotation *handler.AdminQuotationHandler
}

// Auth holds the authentication middleware applied to the route groups
type Auth struct {
	// Staff guards the admin console
	Staff gin.HandlerFunc
	// Optional attaches claims when a valid token is present
	Optional gin.HandlerFunc
}

// Groups builds the domain route groups of the API
func Groups(h Handlers, auth Auth) []*DomainGroup {
	return []*DomainGroup{
		systemRoutes(h),
		storefrontRoutes(h),
		catalogRoutes(h),
		quotationRoutes(h, auth),
		adminRoutes(h, auth),
	}
}

// Mount registers every route group on r and runs Setup
func Mount(r *Router, h Handlers, auth Auth) {
	for _, group := range Groups(h, auth) {
		r.Register(group)
	}
	r.Setup()
}

func systemRoutes(h Handlers) *DomainGroup {
	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.Info)
	return system
}

func storefrontRoutes(h Handlers) *DomainGroup {
	storefront := NewDomainGroup("storefront", "/storefront")
	storefront.GET("/home", h.Storefront.Home)
	return storefront
}

func catalogRoutes(h Handlers) *DomainGroup {
	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.GET("/products", h.Product.List)
	catalog.GET("/products/sku/:sku", h.Storefront.ProductBySKU)
	catalog.GET("/categories", h.Storefront.Categories)
	catalog.GET("/categories/:name/products", h.Storefront.ProductsByCategory)
	catalog.GET("/brands/:id", h.Storefront.BrandDetail)
	catalog.GET("/search", h.Storefront.Search)
	return catalog
}

func quotationRoutes(h Handlers, auth Auth) *DomainGroup {
	quotations := NewDomainGroup("quotations", "/quotations")
	quotations.Use(auth.Optional)
	quotations.POST("", h.Quotation.Submit)
	quotations.GET("/:id", h.Quotation.GetByID)
	quotations.GET("/:id/document", h.Quotation.Document)
	return quotations
}

func adminRoutes(h Handlers, auth Auth) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin")
	admin.Use(auth.Staff)

	catalog := admin.Group("admin-catalog", "/catalog")

	catalog.GET("/categories", h.Category.List)
	catalog.GET("/categories/tree", h.Category.Tree)
	catalog.POST("/categories", h.Category.Create)
	catalog.GET("/categories/:id", h.Category.GetByID)
	catalog.PUT("/categories/:id", h.Category.Update)
	catalog.DELETE("/categories/:id", h.Category.Delete)

	catalog.GET("/brands", h.Brand.List)
	catalog.POST("/brands", h.Brand.Create)
	catalog.GET("/brands/:id", h.Brand.GetByID)
	catalog.PUT("/brands/:id", h.Brand.Update)
	catalog.POST("/brands/:id/logo", h.Brand.UploadLogo)
	catalog.DELETE("/brands/:id", h.Brand.Delete)

	catalog.GET("/banners", h.Banner.List)
	catalog.POST("/banners", h.Banner.Create)
	catalog.GET("/banners/:id", h.Banner.GetByID)
	catalog.PUT("/banners/:id", h.Banner.Update)
	catalog.POST("/banners/:id/image", h.Banner.UploadImage)
	catalog.DELETE("/banners/:id", h.Banner.Delete)

	catalog.GET("/products", h.Product.List)
	catalog.POST("/products", h.Product.Create)
	catalog.GET("/products/:id", h.Product.GetByID)
	catalog.PUT("/products/:id", h.Product.Update)
	catalog.PUT("/products/:id/relations", h.Product.SetRelations)
	catalog.POST("/products/:id/image", h.Product.UploadImage)
	catalog.POST("/products/:id/clone", h.Product.Clone)
	catalog.DELETE("/products/:id", h.Product.Delete)

	quotations := admin.Group("admin-quotations", "/quotations")
	quotations.GET("", h.AdminQuotation.List)
	quotations.POST("/bulk-confirm", h.AdminQuotation.BulkConfirm)
	quotations.GET("/:id", h.AdminQuotation.GetByID)
	quotations.PATCH("/:id", h.AdminQuotation.UpdateHeader)
	quotations.POST("/:id/status", h.AdminQuotation.ChangeStatus)
	quotations.POST("/:id/confirm", h.AdminQuotation.Confirm)
	quotations.POST("/:id/confirm-async", h.AdminQuotation.ConfirmAsync)
	quotations.POST("/:id/compute-total", h.AdminQuotation.ComputeTotal)
	quotations.POST("/:id/lines", h.AdminQuotation.AddLine)
	quotations.PUT("/:id/lines/:line_id", h.AdminQuotation.UpdateLine)
	quotations.DELETE("/:id/lines/:line_id", h.AdminQuotation.DeleteLine)

	return admin
}
