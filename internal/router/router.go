package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ManourasM/TavernAI-sub000/internal/config"
	"github.com/ManourasM/TavernAI-sub000/internal/handler"
	"github.com/ManourasM/TavernAI-sub000/internal/middleware"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Orders      *handler.OrderHandler
	Menu        *handler.MenuHandler
	Stations    *handler.StationHandler
	Corrections *handler.CorrectionHandler
	Receipts    *handler.ReceiptHandler
	Socket      *handler.SocketHandler
}

// Register wires all routes onto the Echo instance.  The floor surface
// (orders, items, websocket) is open on the restaurant LAN and only
// rate limited; the management surface (menu uploads, stations,
// correction listing, purge) requires a back-office JWT.  The read-
// mostly GETs for menu and receipts go through the Redis response
// cache when one is configured.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	rateCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()
	limited := middleware.NewTokenBucket(rateCfg, rdb)
	cached := middleware.NewRedisCache(cacheCfg, rdb)

	// floor surface: waiter pads and station displays
	v1 := e.Group("/v1")
	v1.POST("/orders/preview", h.Orders.Preview, limited)
	v1.POST("/orders", h.Orders.Submit, limited)
	v1.GET("/orders", h.Orders.ListTables)
	v1.POST("/items/:id/done", h.Orders.MarkDone)
	v1.DELETE("/tables/:table/items/:id", h.Orders.Cancel)
	v1.POST("/tables/:table/finalize", h.Orders.Finalize)
	v1.GET("/tables/:table/meta", h.Orders.Meta)
	v1.POST("/corrections", h.Corrections.Capture)
	v1.GET("/menu", h.Menu.Current, cached)
	v1.GET("/stations", h.Stations.List)

	e.GET("/ws/:station", h.Socket.Subscribe)

	// management surface: back-office tools
	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.GET("/menu/versions", h.Menu.Versions)
	admin.POST("/menu", h.Menu.Upload)
	admin.POST("/stations", h.Stations.Create)
	admin.PATCH("/stations/:key", h.Stations.SetActive)
	admin.GET("/corrections", h.Corrections.List)
	admin.GET("/corrections/export", h.Corrections.Export)
	admin.GET("/receipts", h.Receipts.List, cached)
	admin.GET("/receipts/:id", h.Receipts.Get, cached)
	admin.POST("/admin/purge", h.Orders.Purge)
}
