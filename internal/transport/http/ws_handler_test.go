package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"elearning-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string `json:"type"`
	Payload struct {
		Code    domain.Code    `json:"code"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	} `json:"payload"`
}

func TestWebSocketQuizAttempt(t *testing.T) {
	s := newTestServer(t)
	server := httptest.NewServer(s.router)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/quiz?token=" + s.learner
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(t, conn, "ready")

	send(t, conn, map[string]any{"type": "start", "payload": map[string]any{"quizId": s.quizID}})
	started := readNext(t, conn, "started")
	if started.Payload.Code != domain.CodeSuccess {
		t.Fatalf("start failed: %+v", started.Payload)
	}
	sessionID := int64(started.Payload.Data["sessionId"].(float64))

	send(t, conn, map[string]any{"type": "question", "payload": map[string]any{"quizId": s.quizID, "ord": 2}})
	question := readNext(t, conn, "question")
	if question.Payload.Data["ordQuestion"].(float64) != 2 {
		t.Fatalf("unexpected question %+v", question.Payload.Data)
	}

	send(t, conn, map[string]any{"type": "finish", "payload": map[string]any{
		"courseId":  s.courseID,
		"quizId":    s.quizID,
		"sessionId": sessionID,
		"answerIds": []int64{600, 602},
	}})
	finished := readNext(t, conn, "finished")
	if finished.Payload.Code != domain.CodeSuccess || finished.Payload.Data["percent"].(float64) != 1 {
		t.Fatalf("unexpected finish %+v", finished.Payload)
	}

	send(t, conn, map[string]any{"type": "finish", "payload": "garbage"})
	readNext(t, conn, "error")
}

func TestWebSocketFinishRejectsNonPositiveIDs(t *testing.T) {
	s := newTestServer(t)
	server := httptest.NewServer(s.router)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/quiz?token=" + s.learner
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readNext(t, conn, "ready")

	for _, payload := range []map[string]any{
		{"courseId": s.courseID, "quizId": s.quizID, "sessionId": 0, "answerIds": []int64{600}},
		{"courseId": s.courseID, "quizId": 0, "sessionId": 7, "answerIds": []int64{600}},
		{"courseId": -1, "quizId": s.quizID, "sessionId": 7, "answerIds": []int64{600}},
	} {
		send(t, conn, map[string]any{"type": "finish", "payload": payload})
		msg := readNext(t, conn, "error")
		if msg.Payload.Code != domain.CodeInvalidData {
			t.Fatalf("expected INVALID_DATA for %v, got %+v", payload, msg.Payload)
		}
	}
	if rows := s.history.Rows(); len(rows) != 0 {
		t.Fatalf("expected no history rows, got %d", len(rows))
	}
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	s := newTestServer(t)
	server := httptest.NewServer(s.router)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/quiz"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}
}

func send(t *testing.T, conn *websocket.Conn, msg any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readNext(t *testing.T, conn *websocket.Conn, expect string) wsMessage {
	t.Helper()
	var msg wsMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg
}
