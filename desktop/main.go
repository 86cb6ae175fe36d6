// Command desktop is a multi-session desktop client for the blockfall
// server. It lists configurations and sessions, then plays one or more
// boards side by side over the websocket stream.
//
//	desktop [-server http://localhost:8080] [session-id ...]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/wricardo/blockfall/desktop/keys"
)

const (
	screenWidth  = 900
	screenHeight = 720
	headerHeight = 60
	boardGap     = 24
	maxCellSize  = 30
)

// ScreenType represents different screens in the app
type ScreenType int

const (
	ScreenWelcome ScreenType = iota
	ScreenGame
)

var (
	backgroundColor = color.RGBA{20, 20, 28, 255}
	emptyColor      = color.RGBA{40, 40, 52, 255}
	landedColor     = color.RGBA{120, 120, 130, 255}
	activeBorder    = color.RGBA{255, 255, 255, 255}
)

// pieceColors holds a color per shape letter
var pieceColors = map[byte]color.RGBA{
	'I': {0, 220, 220, 255},
	'O': {230, 220, 0, 255},
	'T': {170, 0, 220, 255},
	'S': {0, 210, 0, 255},
	'Z': {220, 0, 0, 255},
	'J': {0, 80, 230, 255},
	'L': {240, 150, 0, 255},
}

// Game represents the desktop game client
type Game struct {
	api     *APIClient
	baseURL string

	currentScreen ScreenType
	welcome       *WelcomeScreen

	sessions      []*Session
	activeSession int
	keys          *keys.Repeater
}

// WelcomeScreen manages the welcome screen state. The cursor walks the
// configs first, then the existing sessions.
type WelcomeScreen struct {
	configs   []ConfigListItem
	sessions  []SessionListItem
	cursorPos int
	errorMsg  string
}

// newKeyRepeater binds arrows, WASD and Space. Rotation fires once per press.
func newKeyRepeater() *keys.Repeater {
	return keys.NewRepeater(map[keys.Key]string{
		keys.Key(ebiten.KeyArrowLeft):  "left",
		keys.Key(ebiten.KeyA):          "left",
		keys.Key(ebiten.KeyArrowRight): "right",
		keys.Key(ebiten.KeyD):          "right",
		keys.Key(ebiten.KeyArrowDown):  "down",
		keys.Key(ebiten.KeyS):          "down",
		keys.Key(ebiten.KeyArrowUp):    "rotate",
		keys.Key(ebiten.KeyW):          "rotate",
		keys.Key(ebiten.KeySpace):      "rotate",
	}, "rotate")
}

// NewGame creates a client. With session IDs it skips the welcome screen.
func NewGame(baseURL string, sessionIDs []string) *Game {
	g := &Game{
		api:     NewAPIClient(baseURL),
		baseURL: baseURL,
		welcome: &WelcomeScreen{},
		keys:    newKeyRepeater(),
	}

	for _, id := range sessionIDs {
		g.addSession(id, "")
	}
	if len(g.sessions) > 0 {
		g.currentScreen = ScreenGame
	} else {
		g.loadWelcomeData()
	}
	return g
}

func (g *Game) addSession(id, configID string) {
	session, err := Connect(g.baseURL, id)
	if err != nil {
		log.Printf("Failed to connect to session %s: %v", id, err)
		g.welcome.errorMsg = fmt.Sprintf("Connect %s: %v", id, err)
		return
	}
	session.configID = configID
	g.sessions = append(g.sessions, session)
	g.activeSession = len(g.sessions) - 1
}

// loadWelcomeData fetches available sessions and configs from the server
func (g *Game) loadWelcomeData() {
	g.welcome.errorMsg = ""

	configs, err := g.api.ListConfigs()
	if err != nil {
		g.welcome.errorMsg = fmt.Sprintf("Error loading configs: %v", err)
		return
	}
	sessions, err := g.api.ListSessions()
	if err != nil {
		g.welcome.errorMsg = fmt.Sprintf("Error loading sessions: %v", err)
		return
	}
	g.welcome.configs = configs
	g.welcome.sessions = sessions
	g.welcome.cursorPos = 0
}

func (g *Game) createSession(configID string) {
	info, err := g.api.CreateSession(configID)
	if err != nil {
		g.welcome.errorMsg = fmt.Sprintf("Create session: %v", err)
		return
	}
	log.Printf("Created new session: %s (config: %s)", info.ID, info.ConfigName)
	g.addSession(info.ID, info.ConfigName)
	g.currentScreen = ScreenGame
}

// Update updates game logic
func (g *Game) Update() error {
	switch g.currentScreen {
	case ScreenWelcome:
		g.updateWelcomeScreen()
	case ScreenGame:
		g.updateGameScreen()
	}
	return nil
}

func (g *Game) updateWelcomeScreen() {
	w := g.welcome
	total := len(w.configs) + len(w.sessions)

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		if w.cursorPos > 0 {
			w.cursorPos--
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		if w.cursorPos < total-1 {
			w.cursorPos++
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		g.loadWelcomeData()
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		if len(g.sessions) > 0 {
			g.currentScreen = ScreenGame
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		if total == 0 {
			return
		}
		if w.cursorPos < len(w.configs) {
			g.createSession(w.configs[w.cursorPos].ConfigID)
			return
		}
		joined := w.sessions[w.cursorPos-len(w.configs)]
		g.addSession(joined.ID, joined.ConfigName)
		g.currentScreen = ScreenGame
	}
}

func (g *Game) updateGameScreen() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.loadWelcomeData()
		g.currentScreen = ScreenWelcome
		return
	}
	if len(g.sessions) == 0 {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.activeSession = (g.activeSession + 1) % len(g.sessions)
	}

	active := g.sessions[g.activeSession]
	if inpututil.IsKeyJustPressed(ebiten.KeyR) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		if err := active.Send("start"); err != nil {
			log.Printf("Send start to %s: %v", active.id, err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.createSession(active.configID)
	}

	pressed := func(k keys.Key) bool { return ebiten.IsKeyPressed(ebiten.Key(k)) }
	for _, action := range g.keys.Step(pressed) {
		if err := active.Send(action); err != nil {
			log.Printf("Send %s to %s: %v", action, active.id, err)
		}
	}
}

// Draw renders the current screen
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	switch g.currentScreen {
	case ScreenWelcome:
		g.drawWelcomeScreen(screen)
	case ScreenGame:
		g.drawGameScreen(screen)
	}
}

func (g *Game) drawWelcomeScreen(screen *ebiten.Image) {
	w := g.welcome
	ebitenutil.DebugPrintAt(screen, "BLOCKFALL", 20, 20)
	ebitenutil.DebugPrintAt(screen, "Up/Down select, Enter create or join, F refresh, Esc back", 20, 40)

	y := 80
	ebitenutil.DebugPrintAt(screen, "New game:", 20, y)
	y += 20
	for i, c := range w.configs {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s %-10s %dx%d  %s",
			cursor(i == w.cursorPos), c.ConfigID, c.Rows, c.Columns, c.Description), 20, y)
		y += 16
	}

	y += 16
	ebitenutil.DebugPrintAt(screen, "Join session:", 20, y)
	y += 20
	for i, s := range w.sessions {
		status, score := "?", 0
		if s.GameState != nil {
			status, score = s.GameState.Status, s.GameState.Score
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s %s  %-10s %-9s score %d",
			cursor(len(w.configs)+i == w.cursorPos), s.ID, s.ConfigName, status, score), 20, y)
		y += 16
	}

	if w.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, w.errorMsg, 20, screenHeight-30)
	}
}

func cursor(selected bool) string {
	if selected {
		return ">"
	}
	return " "
}

func (g *Game) drawGameScreen(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, "Arrows/WASD move, Up/Space rotate, R start, Tab switch, N new, Esc menu", 20, 10)
	if len(g.sessions) == 0 {
		ebitenutil.DebugPrintAt(screen, "No sessions", 20, headerHeight)
		return
	}

	width := (screenWidth - boardGap*(len(g.sessions)+1)) / len(g.sessions)
	for i, session := range g.sessions {
		x := boardGap + i*(width+boardGap)
		g.drawSession(screen, session, x, headerHeight, width, i == g.activeSession)
	}
}

func (g *Game) drawSession(screen *ebiten.Image, s *Session, x, y, width int, active bool) {
	state, lastError, connected := s.Snapshot()

	title := s.id
	if active {
		title = "> " + title
	}
	if !connected {
		title += " (disconnected)"
	}
	ebitenutil.DebugPrintAt(screen, title, x, y-20)

	if state == nil || len(state.Board) == 0 {
		ebitenutil.DebugPrintAt(screen, "waiting for state...", x, y)
		return
	}

	rows, cols := len(state.Board), len(state.Board[0])
	cell := min(maxCellSize, width/cols, (screenHeight-y-120)/rows)

	if active {
		ebitenutil.DrawRect(screen, float64(x-2), float64(y-2),
			float64(cols*cell+4), float64(rows*cell+4), activeBorder)
	}
	for r, line := range state.Board {
		for c := 0; c < len(line); c++ {
			ebitenutil.DrawRect(screen, float64(x+c*cell), float64(y+r*cell),
				float64(cell-1), float64(cell-1), cellColor(line[c]))
		}
	}

	infoY := y + rows*cell + 12
	info := fmt.Sprintf("Score %d  Level %d  Lines %d\nSpeed %dms  High %d",
		state.Score, state.Level, state.TotalLines, state.GameSpeed, state.HighScore)
	if state.Next != nil {
		info += "\nNext " + state.Next.Name
	}
	switch state.Status {
	case "ready":
		info += "\nPress R to start"
	case "game_over":
		info += fmt.Sprintf("\nGAME OVER - %d. R to restart", state.Score)
	}
	if lastError != "" {
		info += "\n! " + lastError
	}
	ebitenutil.DebugPrintAt(screen, info, x, infoY)
}

// cellColor maps a board character to a color: '.' empty, '#' landed, a
// shape letter for the falling piece.
func cellColor(ch byte) color.Color {
	switch ch {
	case '.':
		return emptyColor
	case '#':
		return landedColor
	}
	if c, ok := pieceColors[ch]; ok {
		return c
	}
	return landedColor
}

// Layout returns the game screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	server := flag.String("server", "http://localhost:8080", "blockfall server URL")
	flag.Parse()

	game := NewGame(*server, flag.Args())

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Blockfall - Multi-Session Desktop Client")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
