// Package websocket hosts live quiz-taking sessions. Each connection owns
// one session.Session; the client drives it with select/check/next/submit
// messages and the hub pushes question, tick, feedback and completion
// events back.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quizforge/internal/auth"
	"quizforge/internal/models"
	"quizforge/internal/quiz"
	"quizforge/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// upgrader configures the WebSocket connection upgrade.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins. Adjust this in production!
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the standard message format exchanged over WebSocket.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// QuizFetcher loads the quiz a session runs against.
type QuizFetcher interface {
	GetQuiz(ctx context.Context, id string) (*models.Quiz, error)
}

// SubmitterFactory binds the attempt recorder to one authenticated owner.
type SubmitterFactory interface {
	SubmitterFor(ownerID uint) session.Submitter
}

type Hub struct {
	mu         sync.Mutex
	clients    map[*Client]bool
	quizzes    QuizFetcher
	submitters SubmitterFactory
	jwtSecret  string
	logger     *zap.SugaredLogger
}

func NewHub(quizzes QuizFetcher, submitters SubmitterFactory, jwtSecret string, logger *zap.SugaredLogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		quizzes:    quizzes,
		submitters: submitters,
		jwtSecret:  jwtSecret,
		logger:     logger,
	}
}

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	quiz    *models.Quiz
	session *session.Session
	logger  *zap.SugaredLogger
}

// HandleSession authenticates the connection, loads the quiz and runs a
// session for it. The token travels as a query parameter because browsers
// cannot set headers on websocket upgrades.
func (h *Hub) HandleSession(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizId"]

	userID, err := auth.ParseToken(h.jwtSecret, r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	loaded, err := h.quizzes.GetQuiz(r.Context(), quizID)
	if err != nil {
		if errors.Is(err, quiz.ErrNotFound) {
			http.Error(w, "Quiz not found", http.StatusNotFound)
			return
		}
		h.logger.Errorw("failed to load quiz for session", "quizId", quizID, "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
		quiz:   loaded,
		logger: h.logger,
	}
	client.session = session.New(
		loaded,
		h.submitters.SubmitterFor(userID),
		session.WithListener(client),
		session.WithLogger(h.logger),
	)

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	go client.writePump()
	go client.readPump()

	client.session.Start(context.Background())
}

// removeClient tears the session down so its timer never outlives the
// connection.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	client.session.Close()
	// The send channel stays open: a late session callback may still queue
	// a message, which the retired writePump simply never drains.
	close(client.done)
}

func (c *Client) sendEvent(messageType string, data interface{}) {
	payload, err := json.Marshal(Message{Type: messageType, Data: data})
	if err != nil {
		c.logger.Errorw("failed to marshal websocket message", "type", messageType, "error", err)
		return
	}
	select {
	case c.send <- payload:
	default:
		c.logger.Warnw("send channel full, dropping message", "type", messageType)
	}
}

// Listener callbacks. These run on the session's goroutines and only queue
// outbound messages; they never call back into the session.

func (c *Client) QuestionShown(index, total int) {
	c.sendEvent("question", map[string]interface{}{
		"index":    index,
		"total":    total,
		"question": c.quiz.Questions[index].ToDTO(),
	})
}

func (c *Client) Tick(remaining int) {
	c.sendEvent("tick", map[string]int{"remaining": remaining})
}

func (c *Client) Completed(result session.SubmitResult) {
	c.sendEvent("completed", result)
}

func (c *Client) SubmitFailed(err error) {
	c.sendEvent("submit_error", map[string]string{
		"error": "Could not submit your answers. Please try again.",
	})
}

type inboundMessage struct {
	Type   string `json:"type"`
	Option *int   `json:"option,omitempty"`
}

func (c *Client) handleMessage(raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendEvent("error", map[string]string{"error": "invalid message"})
		return
	}

	var err error
	switch msg.Type {
	case "select":
		if msg.Option == nil {
			err = errors.New("select requires an option")
			break
		}
		err = c.session.Select(*msg.Option)
	case "check":
		var feedback session.Feedback
		if feedback, err = c.session.CheckAnswer(); err == nil {
			c.sendEvent("feedback", feedback)
		}
	case "next":
		err = c.session.Advance()
	case "submit":
		err = c.session.ForceSubmit()
	case "retry":
		err = c.session.RetrySubmit()
	default:
		err = errors.New("unknown message type")
	}

	if err != nil {
		c.sendEvent("error", map[string]string{"error": err.Error()})
	}
}

// readPump continuously reads messages from the WebSocket connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.removeClient(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warnw("unexpected websocket close", "error", err)
			}
			break
		}
		c.handleMessage(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
