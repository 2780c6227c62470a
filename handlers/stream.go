package handlers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/biosecret/go-todo/events"
	"github.com/biosecret/go-todo/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const (
	keepAliveInterval = 15 * time.Second
	keepAliveMsg      = ":keepalive\n"
	openMsg           = ":ok\n\n"
	sseRetryMillis    = 15000
)

// StreamHandler pushes the caller's todo events as Server-Sent Events.
type StreamHandler struct {
	hub       *events.Hub
	log       logrus.FieldLogger
	keepAlive time.Duration
}

func NewStreamHandler(hub *events.Hub, log logrus.FieldLogger) *StreamHandler {
	return &StreamHandler{hub: hub, log: log, keepAlive: keepAliveInterval}
}

func formatSSEMessage(eventType string, data any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	if err := enc.Encode(map[string]any{"data": data}); err != nil {
		return "", err
	}

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("event: %s\n", eventType))
	sb.WriteString(fmt.Sprintf("retry: %d\n", sseRetryMillis))
	sb.WriteString(fmt.Sprintf("data: %s\n\n", strings.TrimRight(buf.String(), "\n")))

	return sb.String(), nil
}

// TodoEvents streams todo events of the authenticated user
//
//	@Summary	Stream own todo events
//	@Tags		todo
//	@Produce	text/event-stream
//	@Security	TokenKey
//	@Success	200
//	@Router		/TodoEvents [get]
func (h *StreamHandler) TodoEvents(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")

	userName := middleware.UserName(c)
	stream, cancel := h.hub.Subscribe(userName)
	log := h.log.WithField("userName", userName)
	log.Debug("event stream opened")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		// headers only leave on the first flush
		if _, err := w.WriteString(openMsg); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}

		keepAliveTicker := time.NewTicker(h.keepAlive)
		defer keepAliveTicker.Stop()

		for {
			select {
			case ev, ok := <-stream:
				if !ok {
					return
				}
				msg, err := formatSSEMessage(string(ev.Type), ev)
				if err != nil {
					log.WithError(err).Warn("failed to format sse message")
					continue
				}
				if _, err := w.WriteString(msg); err != nil {
					log.WithError(err).Debug("event stream write failed")
					return
				}
			case <-keepAliveTicker.C:
				if _, err := w.WriteString(keepAliveMsg); err != nil {
					return
				}
			}

			// a failed flush means the client went away
			if err := w.Flush(); err != nil {
				log.Debug("event stream closed")
				return
			}
		}
	}))

	return nil
}
