package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/auth"
	"github.com/konman95/mainst.ai/internal/config"
	"github.com/konman95/mainst.ai/internal/http/dto"
	"github.com/konman95/mainst.ai/internal/http/handlers"
	"github.com/konman95/mainst.ai/internal/middleware"
	"github.com/konman95/mainst.ai/internal/rbac"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Meta       *handlers.MetaHandler
	OwnerCover *handlers.OwnerCoverHandler
	Action     *handlers.ActionHandler
	Audit      *handlers.AuditHandler
	Contact    *handlers.ContactHandler
	Chat       *handlers.ChatHandler
	Profile    *handlers.ProfileHandler
	Dashboard  *handlers.DashboardHandler
	Cron       *handlers.CronHandler
	WSHub      *handlers.WSHub
}

// NewApp builds the fiber app with the JSON error handler. Values read from
// the request outlive it (tenant ids end up in stored records), so the app
// runs immutable.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		Immutable: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			reqID, _ := c.Locals(middleware.CtxRequestID).(string)
			return c.Status(code).JSON(dto.ErrorResponse{Error: err.Error(), RequestID: reqID})
		},
	})
}

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	resolver *auth.Resolver,
	h Handlers,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-Cron-Secret",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		resp := dto.HealthResponse{
			Status:    "ok",
			Storage:   cfg.StorageBackend,
			Redis:     "disabled",
			Inference: "mock",
		}
		if rdb != nil {
			resp.Redis = "ok"
			if err := rdb.Ping(c.UserContext()).Err(); err != nil {
				resp.Redis = "unavailable"
			}
		}
		if cfg.InferenceConfigured() {
			resp.Inference = cfg.HFModel
		}
		return c.JSON(resp)
	})

	api := app.Group("/api/v1")

	// Rate-limited public endpoints
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Auth (public)
	api.Post("/auth/dev", h.Auth.DevToken)

	// Meta (public, no auth required)
	api.Get("/meta/owner-cover", h.Meta.GetOwnerCover)
	api.Get("/meta/audit-types", h.Meta.GetAuditTypes)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(resolver, log))

	protected.Get("/me/permissions", h.Meta.GetPermissions)

	// Owner Cover
	protected.Get("/ownercover/settings", h.OwnerCover.GetSettings)
	protected.Post("/ownercover/settings", middleware.RequirePermission(rbac.PermManageSettings), h.OwnerCover.ReplaceSettings)
	protected.Patch("/ownercover/settings", middleware.RequirePermission(rbac.PermManageSettings), h.OwnerCover.PatchSettings)
	protected.Post("/ownercover/handleInbound", h.OwnerCover.HandleInbound)

	// Approval queue
	protected.Get("/actions", middleware.RequirePermission(rbac.PermViewQueue), h.Action.ListActions)
	protected.Patch("/actions/:id", middleware.RequirePermission(rbac.PermResolveAction), h.Action.ResolveAction)

	// Audit
	protected.Get("/audit", middleware.RequirePermission(rbac.PermViewQueue), h.Audit.ListEvents)

	// Contacts
	contacts := protected.Group("/contacts", middleware.RequirePermission(rbac.PermManageContacts))
	contacts.Get("", h.Contact.ListContacts)
	contacts.Post("", h.Contact.CreateContact)
	contacts.Put("/:id", h.Contact.UpdateContact)
	contacts.Delete("/:id", h.Contact.DeleteContact)

	// Chat
	chat := protected.Group("/chat", middleware.RequirePermission(rbac.PermChat))
	chat.Post("", h.Chat.Chat)
	chat.Get("/history", h.Chat.History)
	chat.Post("/manual", h.Chat.ManualReply)

	// Business profile
	protected.Get("/profile", h.Profile.GetProfile)
	protected.Post("/profile", middleware.RequirePermission(rbac.PermManageProfile), h.Profile.SaveProfile)
	protected.Post("/profile/import", middleware.RequirePermission(rbac.PermManageProfile), h.Profile.ImportProfile)

	// Dashboard
	protected.Get("/dashboard/summary", middleware.RequirePermission(rbac.PermViewQueue), h.Dashboard.Summary)

	// Follow-up sweep
	protected.Post("/cron/run", h.Cron.Run)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware(), middleware.AuthMiddleware(resolver, log))
	app.Get("/ws", websocket.New(h.WSHub.HandleWS))
}
