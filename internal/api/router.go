package api

import (
	"fmt"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/pawhaven/adoption-api/internal/api/handler"
	"github.com/pawhaven/adoption-api/internal/api/middleware"
	"github.com/pawhaven/adoption-api/internal/core/domain"
	"github.com/pawhaven/adoption-api/internal/core/ports"
	"github.com/pawhaven/adoption-api/internal/infrastructure/http/handlers"
	"github.com/pawhaven/adoption-api/internal/realtime"
)

// Identity is what the router needs from the identity resolver: a cheap
// claims check for the gate and a live lookup for the API.
type Identity interface {
	middleware.IdentityResolver
	middleware.ClaimsReader
}

// Deps carries everything NewRouter wires into routes.
type Deps struct {
	Log      zerolog.Logger
	Identity Identity
	Cookie   handler.CookieOptions

	Auth      ports.AuthService
	Pets      ports.PetService
	Adoptions ports.AdoptionService
	Favorites ports.FavoriteService
	Chats     ports.ChatService
	Admin     ports.AdminService
	Settings  ports.SettingService
	Activity  ports.ActivityService

	Hub            *realtime.Hub
	MaxUploadBytes int64
	HealthChecks   map[string]handlers.Check
}

// pagePaths are answered by the app shell once the gate lets them through.
var pagePaths = []string{"/dashboard", "/admin", "/profile", "/messages", "/favorites", "/my-pets", "/pets/new"}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Pre(middleware.Gate(d.Identity))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.Metrics())

	authenticated := middleware.Authenticated(d.Identity)
	userOnly := middleware.RequireRole(d.Identity, domain.RoleUser)
	ownerOnly := middleware.RequireRole(d.Identity, domain.RoleOwner)
	adminOnly := middleware.RequireRole(d.Identity, domain.RoleAdmin)

	// --- Infra ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewHealthDependenciesHandler(d.HealthChecks).Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- App shell pages (behind the gate) ---
	for _, p := range pagePaths {
		e.GET(p, handler.Page)
		e.GET(p+"/*", handler.Page)
	}

	api := e.Group("/api")

	// --- Auth ---
	authH := handler.NewAuthHandler(d.Auth, d.Cookie)
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/logout", authH.Logout, authenticated)
	api.GET("/auth/me", authH.Me, authenticated)
	api.PATCH("/users/me", authH.UpdateProfile, authenticated)

	// --- Pets ---
	petH := handler.NewPetHandler(d.Pets)
	uploadLimit := echomiddleware.BodyLimit(bodyLimit(d.MaxUploadBytes))
	api.GET("/pets", petH.List)
	api.GET("/pets/my-pets", petH.Mine, ownerOnly)
	api.GET("/pets/:id", petH.Get, middleware.Identify(d.Identity))
	api.POST("/pets", petH.Create, ownerOnly)
	api.PATCH("/pets/:id", petH.Update, ownerOnly)
	api.DELETE("/pets/:id", petH.Delete, ownerOnly)
	api.POST("/pets/:id/images", petH.UploadImage, uploadLimit, ownerOnly)
	api.GET("/pets/:id/images/:imageId", petH.Image, middleware.Identify(d.Identity))
	api.DELETE("/pets/:id/images/:imageId", petH.DeleteImage, ownerOnly)

	// --- Adoptions ---
	adoptH := handler.NewAdoptionHandler(d.Adoptions)
	api.POST("/adoptions", adoptH.Create, userOnly)
	api.GET("/adoptions/mine", adoptH.Mine, userOnly)
	api.GET("/adoptions/received", adoptH.Received, ownerOnly)
	api.PATCH("/adoptions/:id", adoptH.Decide, ownerOnly)

	// --- Favorites ---
	favH := handler.NewFavoriteHandler(d.Favorites)
	api.GET("/favorites", favH.List, authenticated)
	api.POST("/favorites", favH.Add, authenticated)
	api.DELETE("/favorites/:petId", favH.Remove, authenticated)

	// --- Chats ---
	chatH := handler.NewChatHandler(d.Chats)
	chats := api.Group("/chats", authenticated)
	chats.GET("", chatH.List)
	chats.POST("/create", chatH.Create)
	chats.GET("/:id", chatH.Get)
	chats.GET("/:id/messages", chatH.Messages)
	chats.POST("/:id/messages", chatH.Post)
	chats.PUT("/:id/messages/read-all", chatH.MarkAllRead)
	chats.PATCH("/:id/messages/:messageId", chatH.MarkRead)

	if d.Hub != nil {
		api.GET("/ws", realtime.NewHandler(d.Hub, d.Identity, d.Chats, d.Log).Serve)
	}

	// --- Settings ---
	settingH := handler.NewSettingHandler(d.Settings)
	api.GET("/settings/public", settingH.Public)

	// --- Admin ---
	adminH := handler.NewAdminHandler(d.Admin, d.Activity)
	admin := api.Group("/admin", adminOnly)
	admin.GET("/users", adminH.Users)
	admin.DELETE("/users/:id", adminH.DeleteUser)
	admin.PATCH("/users/:id/verify", adminH.VerifyUser)
	admin.GET("/pets", adminH.Pets)
	admin.DELETE("/pets/:id", adminH.DeletePet)
	admin.GET("/activities", adminH.Activities)
	admin.GET("/settings", settingH.List)
	admin.PUT("/settings/:key", settingH.Put)
	admin.DELETE("/settings/:key", settingH.Delete)

	return e
}

// bodyLimit leaves headroom over the file limit for multipart framing so the
// service reports oversize images itself.
func bodyLimit(maxBytes int64) string {
	return fmt.Sprintf("%dK", maxBytes/1024+1024)
}
