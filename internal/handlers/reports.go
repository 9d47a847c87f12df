package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"casino_platform/internal/reports"
	"casino_platform/pkg/common"
	"casino_platform/pkg/logger"
)

type ReportHandler struct {
	reports *reports.Service
	logger  *logger.Logger
}

func NewReportHandler(reports *reports.Service, logger *logger.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

// Daily returns an operator's per-day summaries. Defaults to the last
// 30 days when from/to are omitted.
func (h *ReportHandler) Daily(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	rows, err := h.reports.OperatorSummaries(c.Request.Context(), c.Param("operator_id"), from, to)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(rows, "daily summaries"))
}

// GGR totals gross gaming revenue straight from the bets table so it
// includes activity the nightly rollup has not covered yet.
func (h *ReportHandler) GGR(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	operatorID := c.Param("operator_id")
	total, err := h.reports.OperatorGGR(c.Request.Context(), operatorID, from, to.AddDate(0, 0, 1))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"operator_id": operatorID,
		"from":        from.Format("2006-01-02"),
		"to":          to.Format("2006-01-02"),
		"ggr":         total,
	}, "operator ggr"))
}

// Rollup rebuilds the daily summaries for one UTC day, yesterday by
// default. Re-running a day overwrites its rows.
func (h *ReportHandler) Rollup(c *gin.Context) {
	day := time.Now().UTC().AddDate(0, 0, -1)
	if raw := c.Query("day"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("day must be YYYY-MM-DD", nil, http.StatusBadRequest))
			return
		}
		day = parsed
	}

	written, err := h.reports.RollupDay(c.Request.Context(), day)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"day":       day.Format("2006-01-02"),
		"operators": written,
	}, "rollup complete"))
}

// dateRange reads from/to query params as YYYY-MM-DD dates. The range
// is inclusive on both ends and defaults to the last 30 days.
func dateRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -29)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, errBadDate
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, errBadDate
		}
		to = parsed
	}
	return from, to, nil
}
