package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"qquiz-service/internal/app"
)

// WSHandler streams newly recorded results of a quiz to its owner.
type WSHandler struct {
	service  *app.SubmissionService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.SubmissionService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS sends a snapshot of the quiz results followed by one message per
// new result. Access is checked before the upgrade so refusals keep their
// HTTP status.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	quizID := chi.URLParam(r, "quizID")

	snapshot, updates, cancel, err := h.service.Watch(r.Context(), actor, quizID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// only the writer goroutine touches conn for writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	seen := make(map[string]struct{}, len(snapshot))
	for _, result := range snapshot {
		seen[result.ID] = struct{}{}
	}
	send <- outboundMessage[any]{Type: "snapshot", Payload: newResultViews(snapshot)}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case result, ok := <-updates:
				if !ok {
					return
				}
				if _, dup := seen[result.ID]; dup {
					continue
				}
				seen[result.ID] = struct{}{}
				select {
				case send <- outboundMessage[any]{Type: "result", Payload: newResultView(result)}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	// the feed is server push; reads only detect the client going away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
