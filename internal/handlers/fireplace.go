package handlers

import (
	"errors"
	"net/http"

	"fireplace_cli/internal/display"
	"fireplace_cli/internal/models"
	"fireplace_cli/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errTurnOn          = "failed to turn fireplace on"
	errTurnOff         = "failed to turn fireplace off"
	errStatus          = "failed to query fireplace status"
	errSetMode         = "failed to set mode"
	errSetTemperature  = "failed to set temperature"
	errInvalidBodyPref = "invalid body: "
	errInvalidUnit     = "invalid unit: use C or F"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err, "client", clientName(c)}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondWithReport writes rep. Operations still waiting for ignition answer
// 202 so callers know to repeat them.
func (h *Handler) respondWithReport(c *gin.Context, rep service.Report) {
	code := http.StatusOK
	if !rep.Completed && rep.Operation != service.OpStatus {
		code = http.StatusAccepted
	}
	c.JSON(code, rep)
}

// operationFailed maps an operation error to a response. Input errors are the
// caller's fault; anything else means the appliance could not be driven.
func (h *Handler) operationFailed(c *gin.Context, userMsg, logKey string, err error, kv ...interface{}) {
	if errors.Is(err, models.ErrUnknownMode) || errors.Is(err, models.ErrInvalidTemperature) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logAndJSONError(c, http.StatusBadGateway, userMsg, logKey, err, kv...)
}

// SetModeRequest is the body of POST /api/v1/fireplace/mode.
type SetModeRequest struct {
	// Mode to set. Allowed: manual, eco, temperature (or temp), off
	Mode string `json:"mode" binding:"required" example:"eco"`
}

// SetTemperatureRequest is the body of POST /api/v1/fireplace/temperature.
type SetTemperatureRequest struct {
	// Target temperature in Unit
	Temperature *float64 `json:"temperature" binding:"required" example:"72"`
	// C or F; defaults to the server's display unit
	Unit string `json:"unit,omitempty" example:"F"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Turn fireplace on
// @Description  Ignites the guard flame when needed. Answers 202 while ignition is still in progress; repeat the call to finish.
// @Tags         fireplace
// @Produce      json
// @Success      200  {object}  service.Report
// @Success      202  {object}  service.Report
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/fireplace/on [post]
// @Security     BearerAuth
func (h *Handler) turnOn(c *gin.Context) {
	rep, err := h.services.TurnOn(c.Request.Context())
	if err != nil {
		h.operationFailed(c, errTurnOn, "fireplace_turn_on_failed", err)
		return
	}
	h.respondWithReport(c, rep)
}

// @Summary      Turn fireplace off
// @Tags         fireplace
// @Produce      json
// @Success      200  {object}  service.Report
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/fireplace/off [post]
// @Security     BearerAuth
func (h *Handler) turnOff(c *gin.Context) {
	rep, err := h.services.TurnOff(c.Request.Context())
	if err != nil {
		h.operationFailed(c, errTurnOff, "fireplace_turn_off_failed", err)
		return
	}
	h.respondWithReport(c, rep)
}

// @Summary      Get fireplace status
// @Description  completed=false means the appliance did not answer in time.
// @Tags         fireplace
// @Produce      json
// @Success      200  {object}  service.Report
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/fireplace/status [get]
// @Security     BearerAuth
func (h *Handler) status(c *gin.Context) {
	rep, err := h.services.Status(c.Request.Context())
	if err != nil {
		h.operationFailed(c, errStatus, "fireplace_status_failed", err)
		return
	}
	h.respondWithReport(c, rep)
}

// @Summary      Set mode
// @Tags         fireplace
// @Accept       json
// @Produce      json
// @Param        body  body      SetModeRequest  true  "Mode payload"
// @Success      200   {object}  service.Report
// @Success      202   {object}  service.Report
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/fireplace/mode [post]
// @Security     BearerAuth
func (h *Handler) setMode(c *gin.Context) {
	var req SetModeRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	mode, err := models.ParseOperationMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rep, err := h.services.SetMode(c.Request.Context(), mode)
	if err != nil {
		h.operationFailed(c, errSetMode, "fireplace_set_mode_failed", err, "mode", mode)
		return
	}
	h.respondWithReport(c, rep)
}

// @Summary      Set target temperature
// @Description  Switches to temperature mode if needed. Accepted range is 5-36 °C (41-97 °F).
// @Tags         fireplace
// @Accept       json
// @Produce      json
// @Param        body  body      SetTemperatureRequest  true  "Temperature payload"
// @Success      200   {object}  service.Report
// @Success      202   {object}  service.Report
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/fireplace/temperature [post]
// @Security     BearerAuth
func (h *Handler) setTemperature(c *gin.Context) {
	var req SetTemperatureRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	unit := h.unit
	if req.Unit != "" {
		u, ok := display.ParseUnit(req.Unit)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidUnit})
			return
		}
		unit = u
	}
	celsius, err := display.ValidateAndConvert(*req.Temperature, unit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rep, err := h.services.SetTemperature(c.Request.Context(), celsius)
	if err != nil {
		h.operationFailed(c, errSetTemperature, "fireplace_set_temperature_failed", err, "celsius", celsius)
		return
	}
	h.respondWithReport(c, rep)
}
