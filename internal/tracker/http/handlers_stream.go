package http

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prioboard/prioboard-backend/internal/tracker/domain"
)

// StreamEvents streams tracker events to one observer over Server-Sent
// Events. The connection opens with an init frame carrying the full ordered
// project list and summary; everything the observer missed while disconnected
// is covered by that snapshot, not replayed.
func (h *Handler) StreamEvents(c *gin.Context) {
	if h.events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream disabled"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	ctx := c.Request.Context()

	sub, err := h.events.Subscribe(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to subscribe"})
		return
	}
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	// Initial snapshot. The subscription is live before this read, so any
	// mutation committed after the snapshot also arrives as an event.
	projects, err := h.svc.ListProjects(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch projects"})
		return
	}
	initial, _ := json.Marshal(gin.H{
		"projects": projects,
		"summary":  domain.Summarize(projects),
	})
	fmt.Fprintf(c.Writer, "event: init\ndata: %s\n\n", initial)
	flusher.Flush()

	log.Printf("tracker: observer %s connected", sub.ID)
	defer log.Printf("tracker: observer %s disconnected", sub.ID)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev, open := <-sub.C:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("tracker: observer %s: failed to marshal %s: %v", sub.ID, ev.Type, err)
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}
