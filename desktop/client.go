package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// GameState is the part of the server's state the client draws
type GameState struct {
	Status        string   `json:"status"`
	Score         int      `json:"score"`
	Level         int      `json:"level"`
	CompletedRows int      `json:"completed_rows"`
	GameSpeed     int      `json:"game_speed_ms"`
	IsGameOver    bool     `json:"is_game_over"`
	HighScore     int      `json:"high_score"`
	Message       string   `json:"message"`
	ConfigName    string   `json:"config_name"`
	TotalLines    int      `json:"total_lines"`
	Board         []string `json:"board"`
	Next          *Piece   `json:"next,omitempty"`
}

// Piece is a tetromino as sent by the server
type Piece struct {
	Name    string  `json:"name"`
	Offsets []Coord `json:"offsets"`
}

// Coord is a row/column pair
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// WSMessage is the websocket envelope
type WSMessage struct {
	SessionID string          `json:"session_id"`
	GameState *GameState      `json:"game_state,omitempty"`
	Event     string          `json:"event,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// SessionListItem is one entry of GET /api/sessions
type SessionListItem struct {
	ID         string     `json:"id"`
	ConfigName string     `json:"config_name"`
	GameState  *GameState `json:"game_state"`
}

// ConfigListItem is one entry of GET /api/configs
type ConfigListItem struct {
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Columns     int    `json:"columns"`
}

// APIClient talks to the REST API
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient returns a client for the server at baseURL
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *APIClient) call(method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(data, result)
}

// ListSessions returns the server's sessions, most recently used first
func (c *APIClient) ListSessions() ([]SessionListItem, error) {
	var resp struct {
		Sessions []SessionListItem `json:"sessions"`
	}
	err := c.call(http.MethodGet, "/api/sessions", nil, &resp)
	return resp.Sessions, err
}

// ListConfigs returns the available board configurations
func (c *APIClient) ListConfigs() ([]ConfigListItem, error) {
	var configs []ConfigListItem
	err := c.call(http.MethodGet, "/api/configs", nil, &configs)
	return configs, err
}

// CreateSession creates and starts a session
func (c *APIClient) CreateSession(configID string) (*SessionListItem, error) {
	var info SessionListItem
	err := c.call(http.MethodPost, "/api/sessions", map[string]interface{}{
		"config_id": configID,
		"start":     true,
	}, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Session is one board the client watches and controls
type Session struct {
	id       string
	configID string
	conn     *websocket.Conn

	mu         sync.RWMutex
	state      *GameState
	lastError  string
	lastUpdate time.Time
	connected  bool
	writeMu    sync.Mutex
}

// Connect opens the websocket stream for sessionID and starts reading it
func Connect(baseURL, sessionID string) (*Session, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	u.RawQuery = url.Values{"session": {sessionID}}.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}

	s := &Session{id: sessionID, conn: conn, connected: true}
	go s.listen()
	log.Printf("WebSocket connected for session %s", sessionID)
	return s, nil
}

func (s *Session) listen() {
	defer func() {
		s.conn.Close()
		s.mu.Lock()
		s.connected = false
		s.mu.Unlock()
	}()

	for {
		var msg WSMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			log.Printf("WebSocket read error for %s: %v", s.id, err)
			return
		}
		s.apply(&msg)
	}
}

// apply folds one websocket message into the session
func (s *Session) apply(msg *WSMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Event {
	case "state_update":
		if msg.GameState != nil {
			s.state = msg.GameState
			s.lastUpdate = time.Now()
			s.lastError = ""
		}
	case "error":
		var text string
		if json.Unmarshal(msg.Data, &text) == nil {
			s.lastError = text
		}
	}
}

// Send asks the server to apply action ("left", "right", "down", "rotate"
// or "start").
func (s *Session) Send(action string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(map[string]string{"action": action})
}

// Snapshot returns the latest state and error text
func (s *Session) Snapshot() (*GameState, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.lastError, s.connected
}
