package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/light-bringer/inventory-service/internal/app/inventory/queries/list_events"
)

// listEvents handles GET /api/v1/events.
func (h *Handler) listEvents(c *gin.Context) {
	req := &list_events.Request{}

	if eventType := c.Query("event_type"); eventType != "" {
		req.EventType = &eventType
	}
	if aggregateID := c.Query("aggregate_id"); aggregateID != "" {
		req.AggregateID = &aggregateID
	}
	if status := c.Query("status"); status != "" {
		req.Status = &status
	}

	limit, err := queryInt(c, "limit")
	if err != nil {
		badRequest(c, err)
		return
	}
	req.Limit = int64(limit)

	events, err := h.svc.ListEvents.Execute(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toEvents(events))
}

// relayEvents runs one outbox relay pass on demand.
func (h *Handler) relayEvents(c *gin.Context) {
	stats, err := h.svc.Relay.RunOnce(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"published": stats.Published, "failed": stats.Failed})
}
