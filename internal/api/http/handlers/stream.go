package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/desivolt/muzdesk/internal/events"
	"github.com/desivolt/muzdesk/internal/observability"
	apperrors "github.com/desivolt/muzdesk/pkg/util/errorutil"
)

const (
	streamHeartbeat    = 15 * time.Second
	streamRenderBudget = 5 * time.Second
)

// renderFunc recomputes a stream's view from a fresh snapshot.
type renderFunc func(ctx context.Context) (any, error)

// streamView answers with Server-Sent Events. It renders once immediately and
// again after every change notification until the client goes away. A render
// error is sent as an "error" event and the stream stays open.
func streamView(c *fiber.Ctx, feed *events.Feed, metrics *observability.Metrics, render renderFunc) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	// Subscribe before the first render so no change falls in between.
	changes, cancel := feed.Subscribe()
	done := metrics.StreamOpened()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer done()
		defer cancel()

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()

		if err := writeSnapshot(w, render); err != nil {
			return
		}
		for {
			select {
			case _, ok := <-changes:
				if !ok {
					return
				}
				if err := writeSnapshot(w, render); err != nil {
					return
				}
			case <-heartbeat.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

// writeSnapshot returns an error only when the client is gone.
func writeSnapshot(w *bufio.Writer, render renderFunc) error {
	ctx, cancel := context.WithTimeout(context.Background(), streamRenderBudget)
	defer cancel()

	event, payload := "snapshot", any(nil)
	view, err := render(ctx)
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		event = "error"
		payload = fiber.Map{"code": domainErr.Code, "message": domainErr.Message, "details": domainErr.Details}
	} else {
		payload = fiber.Map{"data": view}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		body = []byte(`{"code":"INTERNAL_ERROR","message":"internal server error"}`)
		event = "error"
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, body); err != nil {
		return err
	}
	return w.Flush()
}
