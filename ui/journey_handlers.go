package ui

import (
	"net/http"

	"journeygrid/app"
	domain "journeygrid/domain/journey"
	"journeygrid/internal"
	"journeygrid/internal/errors"
	"journeygrid/ui/middleware"

	"github.com/gin-gonic/gin"
)

// JourneyHandler serves the snapshot, session and grid endpoints
type JourneyHandler struct {
	service *app.JourneyService
	logger  *internal.Logger
}

func NewJourneyHandler(service *app.JourneyService, logger *internal.Logger) *JourneyHandler {
	return &JourneyHandler{service: service, logger: logger}
}

type condensedCell struct {
	domain.Cell
	Highlights []string `json:"highlights,omitempty"`
}

type condensedRow struct {
	Stage string          `json:"stage"`
	Cells []condensedCell `json:"cells"`
}

func (h *JourneyHandler) HandleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, err := h.service.Snapshot()
		c.JSON(http.StatusOK, gin.H{"status": "ok", "loaded": err == nil})
	}
}

func (h *JourneyHandler) HandleReload() gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := h.service.Reload(c.Request.Context())
		if err != nil {
			h.fail(c, err)
			return
		}
		h.logger.Info("reloaded snapshot %s from %s", snap.ID, snap.Origin)
		c.JSON(http.StatusOK, snapshotBody(snap))
	}
}

func (h *JourneyHandler) HandleJourney() gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := h.service.Snapshot()
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, snapshotBody(snap))
	}
}

func (h *JourneyHandler) HandleNewSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := h.service.NewSession()
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, state)
	}
}

func (h *JourneyHandler) HandleGetSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := h.service.Session(middleware.Session(c))
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

func (h *JourneyHandler) HandleEndSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.service.EndSession(middleware.Session(c))
		c.Status(http.StatusNoContent)
	}
}

func (h *JourneyHandler) HandleToggle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Value *string `json:"value"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.Value == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be {\"value\": \"...\"}"})
			return
		}
		axis, ok := h.axis(c)
		if !ok {
			return
		}
		state, err := h.service.Toggle(middleware.Session(c), axis, *body.Value)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

func (h *JourneyHandler) HandleSelectAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		axis, ok := h.axis(c)
		if !ok {
			return
		}
		state, err := h.service.SelectAll(middleware.Session(c), axis)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

func (h *JourneyHandler) HandleClear() gin.HandlerFunc {
	return func(c *gin.Context) {
		axis, ok := h.axis(c)
		if !ok {
			return
		}
		state, err := h.service.Clear(middleware.Session(c), axis)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

func (h *JourneyHandler) HandleGrid() gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := h.service.DeriveGrid(middleware.Session(c))
		if err != nil {
			h.fail(c, err)
			return
		}

		body := gin.H{
			"effectiveStage":       view.EffectiveStage,
			"effectiveStakeholder": view.EffectiveStakeholder,
			"activeStage":          view.ActiveStage,
			"activeStakeholder":    view.ActiveStakeholder,
			"visibleCount":         view.VisibleCount,
			"collisions":           view.Collisions,
			"placeholders":         view.Placeholders(),
		}
		if c.Query("condensed") != "true" {
			body["rows"] = view.Rows()
			c.JSON(http.StatusOK, body)
			return
		}

		rows := view.Rows()
		condensed := make([]condensedRow, 0, len(rows))
		for _, row := range rows {
			out := condensedRow{Stage: row.Stage, Cells: make([]condensedCell, 0, len(row.Cells))}
			for _, cell := range row.Cells {
				cc := condensedCell{Cell: cell}
				if cell.Record != nil {
					cc.Highlights = h.service.HighlightsFor(cell.Record)
				}
				out.Cells = append(out.Cells, cc)
			}
			condensed = append(condensed, out)
		}
		body["rows"] = condensed
		body["condensed"] = true
		c.JSON(http.StatusOK, body)
	}
}

func (h *JourneyHandler) HandleHighlights() gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := h.service.RecordAt(c.Param("stage"), c.Param("stakeholder"))
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"stage":       rec.Stage,
			"stakeholder": rec.Stakeholder,
			"highlights":  h.service.HighlightsFor(rec),
			"policy":      h.service.Policy(),
		})
	}
}

func (h *JourneyHandler) axis(c *gin.Context) (domain.Axis, bool) {
	axis, ok := domain.ParseAxis(c.Param("axis"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "axis must be stage or stakeholder"})
	}
	return axis, ok
}

func (h *JourneyHandler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeInvalidInput, errors.CodeEmptyInput:
		return http.StatusUnprocessableEntity
	case errors.CodeHTMLResponse, errors.CodeExternalService:
		return http.StatusBadGateway
	case errors.CodeSourceTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.CodeConfigInvalid:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func snapshotBody(snap *app.Snapshot) gin.H {
	res := snap.Result
	return gin.H{
		"id":                 snap.ID,
		"loadedAt":           snap.LoadedAt,
		"origin":             snap.Origin,
		"records":            len(res.Records),
		"stageAxis":          res.StageAxis,
		"stakeholderAxis":    res.StakeholderAxis,
		"headers":            res.Headers,
		"missingAxisColumns": res.MissingAxisColumns,
		"degraded":           res.Degraded(),
		"stages":             snap.Stages,
	}
}
