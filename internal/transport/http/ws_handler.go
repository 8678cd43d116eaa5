package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"quiz-admin-console/internal/app"
)

// WSHandler serves the live question search.
type WSHandler struct {
	quizzes  *app.QuizService
	debounce time.Duration
	upgrader websocket.Upgrader
}

// NewWSHandler builds the handler; a nil checkOrigin keeps the upgrader's
// same-origin check.
func NewWSHandler(quizzes *app.QuizService, debounce time.Duration, checkOrigin func(r *http.Request) bool) *WSHandler {
	return &WSHandler{
		quizzes:  quizzes,
		debounce: debounce,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type searchPayload struct {
	Search string `json:"search"`
}

type categoryPayload struct {
	Category string `json:"category"`
}

type pagePayload struct {
	Page int `json:"page"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and drives a LiveSearch from client messages.
// The initial state comes from the page, search and category query params.
func (h *WSHandler) ServeWS(c *gin.Context) {
	sess := currentSession(c)
	page, _ := strconv.Atoi(c.Query("page"))
	initial := app.ListQuery{Page: page, Search: c.Query("search"), Category: c.Query("category")}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				// drain so senders never block on a dead connection
				for range send {
				}
				return
			}
		}
	}()

	emit := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-closeSignals:
		}
	}

	live := app.NewLiveSearch(ctx, h.quizzes.ForSession(sess), h.debounce,
		func(view app.QuizPageView) {
			emit(outboundMessage[any]{Type: "view", Payload: view})
		},
		func(err error) {
			log.Printf("live search fetch failed: %v", err)
			emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: app.UserMessage(err)}})
		},
	)
	live.Load(initial)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "search":
			var payload searchPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid search payload"}})
				continue
			}
			live.SetSearch(payload.Search)
		case "category":
			var payload categoryPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid category payload"}})
				continue
			}
			live.SetCategory(payload.Category)
		case "page":
			var payload pagePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid page payload"}})
				continue
			}
			live.SetPage(payload.Page)
		case "refresh":
			live.Refresh()
		default:
			emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	live.Close()
	close(send)
	<-writerDone
}
