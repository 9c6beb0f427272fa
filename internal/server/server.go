// Package server exposes the simulator and the property store over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iwvelando/str-forecast/internal/config"
	"github.com/iwvelando/str-forecast/internal/forecast"
	"github.com/iwvelando/str-forecast/internal/store"
	"github.com/iwvelando/str-forecast/pkg/constants"
	"github.com/iwvelando/str-forecast/pkg/format"
	"github.com/iwvelando/str-forecast/pkg/output"
	"github.com/iwvelando/str-forecast/pkg/simulation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger      *zap.Logger
	store       store.Store
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the simulation and
// property API.
func NewHandler(logger *zap.Logger, st store.Store, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if st == nil {
		st = store.NewMemory()
	}
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}
	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, store: st, maxBodySize: maxBodySize, version: trimmedVersion}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(bodyLimitMiddleware(maxBodySize))

	api := r.Group("/api")
	api.POST("/simulate", h.handleSimulate)
	api.POST("/export/csv", h.handleExportCSV)
	api.POST("/export/yaml", h.handleExportYAML)
	api.GET("/properties", h.handleListProperties)
	api.GET("/properties/:name", h.handleGetProperty)
	api.PUT("/properties/:name", h.handleSaveProperty)
	api.DELETE("/properties/:name", h.handleDeleteProperty)
	api.GET("/version", h.handleVersion)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	logger.Info("router initialized", zap.String("op", "server.NewHandler"))
	return r
}

// SimulateResponse is the body of a successful POST /api/simulate.
type SimulateResponse struct {
	Forecast forecast.Forecast `json:"forecast"`
	Display  Display           `json:"display"`
	Duration string            `json:"duration"`
}

// Display carries the headline figures already formatted for a UI.
type Display struct {
	TotalInvestment string `json:"totalInvestment"`
	TotalRevenue    string `json:"totalRevenue"`
	OperatingCost   string `json:"operatingCost"`
	MonthlyProfit   string `json:"monthlyProfit"`
	ExpenseRatio    string `json:"expenseRatio"`
	ProfitMargin    string `json:"profitMargin"`
	Payback         string `json:"payback"`
}

// PropertyList is the body of GET /api/properties.
type PropertyList struct {
	Properties []config.Property `json:"properties"`
	Warnings   []string          `json:"warnings,omitempty"`
}

func (h *handler) handleSimulate(c *gin.Context) {
	const op = "server.handleSimulate"
	start := time.Now()

	property, ok := h.bindProperty(c, op)
	if !ok {
		return
	}

	conf := config.Configuration{Property: property}
	result, err := forecast.GetForecast(h.logger, conf, forecast.Options{Optimize: queryBool(c, "optimize")})
	if err != nil {
		h.respondForecastError(c, err, op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.String("property", result.Name),
		zap.Bool("optimized", result.Optimization != nil),
		zap.Duration("duration", elapsed),
	)

	c.JSON(http.StatusOK, SimulateResponse{
		Forecast: result,
		Display:  displayFor(result.Result),
		Duration: elapsed.String(),
	})
}

func (h *handler) handleExportCSV(c *gin.Context) {
	const op = "server.handleExportCSV"

	property, ok := h.bindProperty(c, op)
	if !ok {
		return
	}
	result, err := forecast.GetForecast(h.logger, config.Configuration{Property: property}, forecast.Options{})
	if err != nil {
		h.respondForecastError(c, err, op)
		return
	}

	var buf bytes.Buffer
	if err := output.CsvFormat(&buf, []forecast.Forecast{result}); err != nil {
		h.respondError(c, http.StatusInternalServerError, fmt.Sprintf("failed to render csv: %v", err), op)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, exportFileName(result.Name, "-sensitivity.csv")))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *handler) handleExportYAML(c *gin.Context) {
	const op = "server.handleExportYAML"

	property, ok := h.bindProperty(c, op)
	if !ok {
		return
	}
	yamlBytes, err := yaml.Marshal(config.Configuration{Property: property})
	if err != nil {
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, exportFileName(property.Name, ".yaml")))
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", yamlBytes)
}

func (h *handler) handleListProperties(c *gin.Context) {
	const op = "server.handleListProperties"

	properties, warnings, err := h.loadProperties(c)
	if err != nil {
		h.respondError(c, http.StatusInternalServerError, fmt.Sprintf("failed to load properties: %v", err), op)
		return
	}
	c.JSON(http.StatusOK, PropertyList{Properties: properties, Warnings: warnings})
}

func (h *handler) handleGetProperty(c *gin.Context) {
	const op = "server.handleGetProperty"
	name := strings.TrimSpace(c.Param("name"))

	properties, _, err := h.loadProperties(c)
	if err != nil {
		h.respondError(c, http.StatusInternalServerError, fmt.Sprintf("failed to load properties: %v", err), op)
		return
	}
	for _, property := range properties {
		if property.Name == name {
			c.JSON(http.StatusOK, property)
			return
		}
	}
	h.respondError(c, http.StatusNotFound, fmt.Sprintf("property %q not found", name), op)
}

func (h *handler) handleSaveProperty(c *gin.Context) {
	const op = "server.handleSaveProperty"

	property, ok := h.bindProperty(c, op)
	if !ok {
		return
	}
	property.Name = strings.TrimSpace(c.Param("name"))
	if err := property.Validate(); err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error(), op)
		return
	}

	if err := h.store.Save(c.Request.Context(), property.Name, property.Snapshot()); err != nil {
		if errors.Is(err, store.ErrInvalidName) {
			h.respondError(c, http.StatusBadRequest, err.Error(), op)
			return
		}
		h.respondError(c, http.StatusInternalServerError, fmt.Sprintf("failed to save property: %v", err), op)
		return
	}

	h.logger.Info("property saved",
		zap.String("op", op),
		zap.String("property", property.Name),
	)
	c.JSON(http.StatusOK, property)
}

func (h *handler) handleDeleteProperty(c *gin.Context) {
	const op = "server.handleDeleteProperty"
	name := strings.TrimSpace(c.Param("name"))

	if err := h.store.Delete(c.Request.Context(), name); err != nil {
		if errors.Is(err, store.ErrInvalidName) {
			h.respondError(c, http.StatusBadRequest, err.Error(), op)
			return
		}
		h.respondError(c, http.StatusInternalServerError, fmt.Sprintf("failed to delete property: %v", err), op)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": h.version})
}

// bindProperty decodes the request body as a property. It writes the error
// response itself and reports whether the handler should continue.
func (h *handler) bindProperty(c *gin.Context, op string) (config.Property, bool) {
	var property config.Property
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&property); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return config.Property{}, false
		}
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("failed to decode property: %v", err), op)
		return config.Property{}, false
	}
	property.Name = strings.TrimSpace(property.Name)
	return property, true
}

func (h *handler) loadProperties(c *gin.Context) ([]config.Property, []string, error) {
	snapshots, err := h.store.LoadAll(c.Request.Context())
	if err != nil {
		return nil, nil, err
	}
	properties := make([]config.Property, 0, len(snapshots))
	var warnings []string
	for _, snap := range snapshots {
		property, err := config.PropertyFromSnapshot(snap)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("property %q could not be read: %v", snap.Name(), err))
			continue
		}
		properties = append(properties, property)
	}
	return properties, warnings, nil
}

func (h *handler) respondForecastError(c *gin.Context, err error, op string) {
	if errors.Is(err, simulation.ErrInvalidInput) {
		h.respondError(c, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.respondError(c, http.StatusInternalServerError, fmt.Sprintf("failed to compute forecast: %v", err), op)
}

func (h *handler) respondError(c *gin.Context, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Int("status", status),
		zap.String("error", msg),
	)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func displayFor(r simulation.Result) Display {
	return Display{
		TotalInvestment: format.Yen(r.TotalInvestment),
		TotalRevenue:    format.Yen(r.TotalRevenue),
		OperatingCost:   format.Yen(r.MonthlyOperatingCost),
		MonthlyProfit:   format.Yen(r.MonthlyProfit),
		ExpenseRatio:    format.Percent(r.ExpenseRatioPct),
		ProfitMargin:    format.Percent(r.ProfitMarginPct),
		Payback:         r.Payback.String(),
	}
}

func exportFileName(name, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, name)
	if cleaned == "" {
		cleaned = "property"
	}
	return cleaned + suffix
}

func queryBool(c *gin.Context, key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && value
}
