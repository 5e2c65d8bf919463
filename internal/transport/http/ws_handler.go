package http

import (
	"encoding/json"
	"log"
	"net/http"

	"elearning-quiz-service/internal/app"
	"elearning-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler runs a quiz attempt over a websocket: start, step through
// questions, reset and finish on one connection.
type WSHandler struct {
	quizzes   *app.QuizService
	questions *app.QuestionService
	tokens    TokenParser
	upgrader  websocket.Upgrader
}

func NewWSHandler(quizzes *app.QuizService, questions *app.QuestionService, tokens TokenParser) *WSHandler {
	return &WSHandler{
		quizzes:   quizzes,
		questions: questions,
		tokens:    tokens,
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

type startPayload struct {
	QuizID int64 `json:"quizId"`
}

type questionPayload struct {
	QuizID int64 `json:"quizId"`
	Ord    int   `json:"ord"`
}

type finishPayload struct {
	CourseID  int64   `json:"courseId"`
	QuizID    int64   `json:"quizId"`
	SessionID int64   `json:"sessionId"`
	AnswerIDs []int64 `json:"answerIds"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func envelopeMessage[T any](typ string, data T, err error, successMsg string) outboundMessage {
	return outboundMessage{Type: typ, Payload: domain.Result(data, err, successMsg)}
}

func invalidPayload(typ string) outboundMessage {
	return outboundMessage{Type: "error", Payload: domain.Envelope[any]{
		Code:    domain.CodeInvalidData,
		Message: "invalid " + typ + " payload",
	}}
}

// ServeWS authenticates with the token query parameter, then upgrades.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	claims, err := h.tokens.ParseAccess(r.URL.Query().Get("token"))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(domain.Envelope[any]{
			Code:    domain.CodeUnauthorized,
			Message: domain.CodeUnauthorized.Message(),
		})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage, 16)
	writerDone := make(chan struct{})

	// Only this goroutine writes to conn.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	send <- outboundMessage{Type: "ready", Payload: map[string]string{"username": claims.Username}}

	ctx := r.Context()
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var msg outboundMessage
		switch inbound.Type {
		case "start":
			var p startPayload
			if err := json.Unmarshal(inbound.Payload, &p); err != nil || p.QuizID <= 0 {
				msg = invalidPayload(inbound.Type)
				break
			}
			res, err := h.quizzes.StartQuiz(ctx, p.QuizID)
			msg = envelopeMessage("started", res, err, "Start quiz success")
		case "question":
			var p questionPayload
			if err := json.Unmarshal(inbound.Payload, &p); err != nil || p.QuizID <= 0 || p.Ord < 1 {
				msg = invalidPayload(inbound.Type)
				break
			}
			res, err := h.questions.GetQuestionByOrdinal(ctx, p.QuizID, p.Ord)
			msg = envelopeMessage("question", res, err, "")
		case "reset":
			res, err := h.quizzes.ResetQuiz(ctx)
			msg = envelopeMessage("reset", res, err, "Reset quiz success")
		case "finish":
			var p finishPayload
			if err := json.Unmarshal(inbound.Payload, &p); err != nil || p.SessionID <= 0 || p.QuizID <= 0 || p.CourseID <= 0 {
				msg = invalidPayload(inbound.Type)
				break
			}
			res, err := h.quizzes.FinishQuiz(ctx, app.FinishQuizRequest{
				Username:  claims.Username,
				CourseID:  p.CourseID,
				QuizID:    p.QuizID,
				SessionID: p.SessionID,
				AnswerIDs: p.AnswerIDs,
			})
			msg = envelopeMessage("finished", res, err, "Finish quiz success")
		default:
			msg = outboundMessage{Type: "error", Payload: domain.Envelope[any]{
				Code:    domain.CodeInvalidData,
				Message: "unsupported message type",
			}}
		}
		send <- msg
	}

	close(send)
	<-writerDone
}
