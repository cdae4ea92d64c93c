package handlers

import (
	"fireplace_cli/internal/display"
	"fireplace_cli/internal/logger"
	"fireplace_cli/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	unit     display.Unit
	stream   streamBounds
}

// NewHandler constructs a new HTTP handler with dependencies. unit is the default
// unit for temperature request bodies that do not name one.
func NewHandler(services *service.Service, log *logger.Logger, unit display.Unit) *Handler {
	if unit == "" {
		unit = display.Celsius
	}
	return &Handler{services: services, log: log, unit: unit, stream: defaultStreamBounds}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// Browsers cannot set headers on the upgrade request, so the token may also
	// travel as ?token=.
	router.GET("/ws", h.clientMiddleware, h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/token", h.issueToken)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.clientMiddleware)
	{
		h.registerFireplaceRoutes(api)
		h.registerJournalRoutes(api)
	}
}

func (h *Handler) registerFireplaceRoutes(api *gin.RouterGroup) {
	fp := api.Group("/fireplace")
	{
		fp.POST("/on", h.turnOn)
		fp.POST("/off", h.turnOff)
		// Body example: {"mode":"eco"}
		fp.POST("/mode", h.setMode)
		// Body example: {"temperature":72,"unit":"F"}
		fp.POST("/temperature", h.setTemperature)
		fp.GET("/status", h.status)
	}
}

func (h *Handler) registerJournalRoutes(api *gin.RouterGroup) {
	journal := api.Group("/journal")
	{
		journal.GET("/", h.listJournal)
	}
}
