package main

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"energy-core/internal/storage"
)

type handlers struct {
	store *storage.Store
}

type createRunRequest struct {
	ParamsTS time.Time `json:"params_ts" binding:"required"`
}

// createRun enqueues a job for the given params timestamp; the runner
// process (cmd/runner) picks it up and executes the pipeline.
func (h *handlers) createRun(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	jobID, err := h.store.EnqueueJob(ctx, req.ParamsTS)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

// getRun reports a run's status by calc_id.
func (h *handlers) getRun(c *gin.Context) {
	calcID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var status string
	var errMsg sql.NullString
	err = h.store.DB().QueryRowContext(ctx,
		`SELECT status, error_message FROM calc_runs WHERE calc_id=$1`, calcID,
	).Scan(&status, &errMsg)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp := gin.H{"calc_id": calcID, "status": status}
	if errMsg.Valid {
		resp["error_message"] = errMsg.String
	}
	c.JSON(http.StatusOK, resp)
}

// getReport returns the scenario x tariff totals for a completed run,
// summed directly from stage04_pricing rather than re-running the pipeline.
func (h *handlers) getReport(c *gin.Context) {
	calcID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	rows, err := h.store.DB().QueryContext(ctx, `
		SELECT scenario, tariff, SUM(energy_mwh), SUM(netto_total_pln), SUM(vat_pln), SUM(total_pln)
		FROM stage04_pricing
		WHERE calc_id = $1
		GROUP BY scenario, tariff
		ORDER BY scenario, tariff`, calcID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer rows.Close()

	type totalsRow struct {
		Scenario  string  `json:"scenario"`
		Tariff    string  `json:"tariff"`
		EnergyMWh float64 `json:"energy_mwh"`
		Netto     float64 `json:"netto_total_pln"`
		VAT       float64 `json:"vat_pln"`
		Total     float64 `json:"total_pln"`
	}

	var out []totalsRow
	for rows.Next() {
		var t totalsRow
		if err := rows.Scan(&t.Scenario, &t.Tariff, &t.EnergyMWh, &t.Netto, &t.VAT, &t.Total); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report rows for this run"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"calc_id": calcID, "totals": out})
}
