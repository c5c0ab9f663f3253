package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/StruginiCrew/odyssey/internal/app"
	"github.com/StruginiCrew/odyssey/internal/state"
	"github.com/StruginiCrew/odyssey/internal/store"
)

type WSHandler struct {
	service  *app.Service
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.Service) *WSHandler {
	return &WSHandler{
		service: service,
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

type selectAnswersPayload struct {
	QuestionID int   `json:"questionId"`
	AnswerIDs  []int `json:"answerIds"`
}

type inputAnswersPayload struct {
	QuestionID int      `json:"questionId"`
	Inputs     []string `json:"inputs"`
}

type questionPayload struct {
	QuestionID int `json:"questionId"`
}

type sectionPayload struct {
	SectionID int `json:"sectionId"`
}

type sessionPayload struct {
	SessionID string `json:"sessionId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// errorKind maps core errors onto stable client-facing kinds, so clients can
// tell "wrong answer id" apart from "quiz already finished" or "question
// locked by order".
func errorKind(err error) string {
	switch {
	case errors.Is(err, state.ErrSectionNotFound):
		return "sectionNotFound"
	case errors.Is(err, state.ErrQuestionNotFound):
		return "questionNotFound"
	case errors.Is(err, state.ErrAnswerNotFound):
		return "answerNotFound"
	case errors.Is(err, state.ErrQuestionNotAvailable):
		return "questionNotAvailable"
	case errors.Is(err, state.ErrQuestionCanNotBeUpdated):
		return "questionCanNotBeUpdated"
	case errors.Is(err, state.ErrQuizFinished):
		return "quizFinished"
	case errors.Is(err, app.ErrSessionNotFound):
		return "sessionNotFound"
	case errors.Is(err, app.ErrEventLogNotFound):
		return "eventLogNotFound"
	case errors.Is(err, app.ErrEventLogMismatch):
		return "eventLogMismatch"
	case errors.Is(err, store.ErrDuplicateSectionID),
		errors.Is(err, store.ErrDuplicateQuestionID),
		errors.Is(err, store.ErrDuplicateAnswerID),
		errors.Is(err, store.ErrAmbiguousEntryMatch),
		errors.Is(err, store.ErrInvalidPattern):
		return "invalidDefinition"
	default:
		return "internal"
	}
}

// ServeWS upgrades HTTP requests to websockets and drives one quiz session
// per connection. Passing sessionId resumes a persisted session; otherwise a
// new session starts for the given quizId.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizUID := r.URL.Query().Get("quizId")
	sessionID := r.URL.Query().Get("sessionId")
	if quizUID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	var session *app.Session
	if sessionID == "" {
		session, err = h.service.StartSession(r.Context(), quizUID)
	} else {
		session, err = h.service.ResumeSession(r.Context(), quizUID, sessionID)
	}
	if err != nil {
		h.writeError(conn, err)
		return
	}
	defer h.service.EndSession(r.Context(), session.ID())

	if err := conn.WriteJSON(outboundMessage[sessionPayload]{
		Type:    "session",
		Payload: sessionPayload{SessionID: session.ID()},
	}); err != nil {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		if err := h.handle(r.Context(), conn, session, inbound); err != nil {
			log.Printf("ws write error: %v", err)
			return
		}
	}
}

// handle answers one inbound request. Returned errors are write failures;
// core rejections go back to the client as error messages.
func (h *WSHandler) handle(ctx context.Context, conn *websocket.Conn, session *app.Session, inbound inboundMessage) error {
	switch inbound.Type {
	case "selectAnswers":
		var payload selectAnswersPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return h.writeError(conn, err)
		}
		qv, err := h.service.SelectAnswers(ctx, session.ID(), payload.QuestionID, payload.AnswerIDs)
		if err != nil {
			return h.writeError(conn, err)
		}
		return conn.WriteJSON(outboundMessage[any]{Type: "questionView", Payload: qv})
	case "inputAnswers":
		var payload inputAnswersPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return h.writeError(conn, err)
		}
		qv, err := h.service.InputAnswers(ctx, session.ID(), payload.QuestionID, payload.Inputs)
		if err != nil {
			return h.writeError(conn, err)
		}
		return conn.WriteJSON(outboundMessage[any]{Type: "questionView", Payload: qv})
	case "clearAnswers":
		var payload questionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return h.writeError(conn, err)
		}
		qv, err := h.service.ClearAnswers(ctx, session.ID(), payload.QuestionID)
		if err != nil {
			return h.writeError(conn, err)
		}
		return conn.WriteJSON(outboundMessage[any]{Type: "questionView", Payload: qv})
	case "questionView":
		var payload questionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return h.writeError(conn, err)
		}
		qv, err := h.service.QuestionView(ctx, session.ID(), payload.QuestionID)
		if err != nil {
			return h.writeError(conn, err)
		}
		return conn.WriteJSON(outboundMessage[any]{Type: "questionView", Payload: qv})
	case "sectionView":
		var payload sectionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return h.writeError(conn, err)
		}
		sv, err := h.service.SectionView(ctx, session.ID(), payload.SectionID)
		if err != nil {
			return h.writeError(conn, err)
		}
		return conn.WriteJSON(outboundMessage[any]{Type: "sectionView", Payload: sv})
	case "quizView":
		qv, err := h.service.QuizView(ctx, session.ID())
		if err != nil {
			return h.writeError(conn, err)
		}
		return conn.WriteJSON(outboundMessage[any]{Type: "quizView", Payload: qv})
	case "exportEventLog":
		eventLog, err := h.service.ExportEventLog(ctx, session.ID())
		if err != nil {
			return h.writeError(conn, err)
		}
		return conn.WriteJSON(outboundMessage[any]{Type: "eventLog", Payload: eventLog})
	default:
		return h.writeError(conn, errors.New("unsupported message type"))
	}
}

func (h *WSHandler) writeError(conn *websocket.Conn, err error) error {
	return conn.WriteJSON(outboundMessage[errorPayload]{
		Type:    "error",
		Payload: errorPayload{Kind: errorKind(err), Message: err.Error()},
	})
}
