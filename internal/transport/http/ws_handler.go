package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"party-trivia-service/internal/app"
	"party-trivia-service/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.GameService
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, hub *Hub) *WSHandler {
	return &WSHandler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type createPayload struct {
	Questions []domain.Question `json:"questions"`
	PackID    string            `json:"packId"`
}

type joinPayload struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type answerPayload struct {
	Code   string `json:"code"`
	Answer string `json:"answer"`
}

type votePayload struct {
	Code           string `json:"code"`
	SelectedAnswer string `json:"selectedAnswer"`
}

type hostActionPayload struct {
	Code   string `json:"code"`
	Action string `json:"action"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the game
// use cases. Each connection gets an opaque identity that serves as its
// player/host key for the lifetime of the socket.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	events := h.hub.register(connID)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for event := range events {
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(r, connID, inbound); err != nil {
			h.hub.Send(connID, app.ErrorEvent(err.Error()))
		}
	}

	// Disconnect before unregistering: the departure broadcasts go to the
	// remaining members, never back to this connection.
	h.service.Disconnect(connID)
	h.hub.unregister(connID)
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, connID string, inbound inboundMessage) error {
	switch inbound.Type {
	case "room:create":
		var payload createPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload
		}
		_, err := h.service.CreateRoom(r.Context(), connID, payload.Questions, payload.PackID)
		return err
	case "room:join":
		var payload joinPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload
		}
		return h.service.JoinRoom(connID, payload.Code, payload.Name)
	case "answer:submit":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload
		}
		return h.service.SubmitAnswer(connID, payload.Code, payload.Answer)
	case "answer:vote":
		var payload votePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload
		}
		return h.service.CastVote(connID, payload.Code, payload.SelectedAnswer)
	case "host:action":
		var payload hostActionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload
		}
		return h.service.HostAction(connID, payload.Code, payload.Action)
	default:
		return errUnsupportedType
	}
}

var (
	errInvalidPayload  = errors.New("invalid payload")
	errUnsupportedType = errors.New("unsupported message type")
)
