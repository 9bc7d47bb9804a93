package handlers

import (
	"errors"
	"net/http"

	"edgesync/internal/logger"
	"edgesync/internal/sync"

	"github.com/gin-gonic/gin"
)

// SyncHandler exposes the chunked flows to the admin UI. The UI drives a
// flow by POSTing chunk 0 and then every nextChunk the response names.
type SyncHandler struct {
	coordinator *sync.Coordinator
	logger      *logger.Logger
}

func NewSyncHandler(coordinator *sync.Coordinator, logger *logger.Logger) *SyncHandler {
	return &SyncHandler{coordinator: coordinator, logger: logger}
}

type chunkRequest struct {
	Chunk int `json:"chunk"`
}

func (h *SyncHandler) Customers(c *gin.Context) {
	h.run(c, sync.FlowCustomerImport)
}

func (h *SyncHandler) Products(c *gin.Context) {
	h.run(c, sync.FlowProductImport)
}

func (h *SyncHandler) Users(c *gin.Context) {
	h.run(c, sync.FlowUserBackfill)
}

func (h *SyncHandler) run(c *gin.Context, flow sync.Flow) {
	var req chunkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Chunk < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chunk must not be negative"})
		return
	}

	status, err := h.coordinator.StartOrResume(c.Request.Context(), flow, req.Chunk)
	if err != nil {
		switch {
		case errors.Is(err, sync.ErrNoSourceFile):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, sync.ErrNoJob):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, sync.ErrStaleJob):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.logger.Error("%s chunk %d failed: %v", flow, req.Chunk, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Sync failed, state has been reset"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": status})
}

// Status reports, per flow, whether a job is in progress and the stats of
// the last completed run.
func (h *SyncHandler) Status(c *gin.Context) {
	flows := []sync.Flow{sync.FlowCustomerImport, sync.FlowProductImport, sync.FlowUserBackfill}
	out := gin.H{}
	for _, flow := range flows {
		entry := gin.H{"in_progress": false}

		job, found, err := h.coordinator.InProgress(c.Request.Context(), flow)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read sync state"})
			return
		}
		if found {
			entry["in_progress"] = true
			entry["current_chunk"] = job.CurrentChunk
			entry["total_chunks"] = job.TotalChunks
			entry["stats"] = job.Stats
		}

		last, ok, err := h.coordinator.LastRun(c.Request.Context(), flow)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read sync state"})
			return
		}
		if ok {
			entry["last_run"] = last
		}
		out[string(flow)] = entry
	}

	c.JSON(http.StatusOK, gin.H{"data": out})
}
