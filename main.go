// Command blockfall serves the falling-block puzzle game.
//
// It has two modes:
//  1. "serve" runs the HTTP server exposing the REST API, the WebSocket
//     stream and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server against a running API, starting an
//     internal one when none answers
//
// Flags fall back to environment variables, and a .env file in the working
// directory is loaded first. "serve --ngrok" also publishes the server
// through an ngrok tunnel for access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/blockfall/api"
	"github.com/wricardo/blockfall/game/config"
	"github.com/wricardo/blockfall/game/engine"
	"github.com/wricardo/blockfall/game/highscore"
	"github.com/wricardo/blockfall/game/loop"
	"github.com/wricardo/blockfall/game/service"
	"github.com/wricardo/blockfall/game/session"
	"github.com/wricardo/blockfall/transport/mcp"
	"github.com/wricardo/blockfall/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Blockfall"
)

// Flags shared by every mode that may build the game services
var serviceFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config-dir",
		Value:   "configs",
		Usage:   "directory containing game configurations",
		Sources: cli.EnvVars("CONFIG_DIR"),
	},
	&cli.StringFlag{
		Name:    "highscore-file",
		Value:   "highscore.txt",
		Usage:   "file holding the best score",
		Sources: cli.EnvVars("HIGHSCORE_FILE"),
	},
	&cli.DurationFlag{
		Name:    "session-ttl",
		Value:   24 * time.Hour,
		Usage:   "remove sessions idle for longer than this",
		Sources: cli.EnvVars("SESSION_TTL"),
	},
	&cli.BoolFlag{
		Name:    "debug",
		Usage:   "enable debug logging",
		Sources: cli.EnvVars("DEBUG"),
	},
}

// services holds the wired game stack
type services struct {
	game     service.GameService
	sessions *session.Manager
	hub      *websocket.Hub
}

// serviceOptions are read from serviceFlags
type serviceOptions struct {
	configDir     string
	highScoreFile string
	debug         bool
}

// Flags of the optional ngrok tunnel in serve mode
var tunnelFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    "ngrok",
		Usage:   "publish the server through an ngrok tunnel",
		Sources: cli.EnvVars("NGROK_ENABLED"),
	},
	&cli.StringFlag{
		Name:    "ngrok-auth",
		Usage:   "ngrok auth token",
		Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
	},
	&cli.StringFlag{
		Name:    "ngrok-domain",
		Usage:   "custom ngrok domain (optional)",
		Sources: cli.EnvVars("NGROK_DOMAIN"),
	},
}

// tunnelOptions are read from tunnelFlags
type tunnelOptions struct {
	enabled   bool
	authToken string
	domain    string
}

func tunnelOptionsFrom(cmd *cli.Command) tunnelOptions {
	return tunnelOptions{
		enabled:   cmd.Bool("ngrok"),
		authToken: cmd.String("ngrok-auth"),
		domain:    cmd.String("ngrok-domain"),
	}
}

// endpoint returns the ngrok HTTP endpoint, on the custom domain if set
func (o tunnelOptions) endpoint() ngrokConfig.Tunnel {
	if o.domain != "" {
		return ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(o.domain))
	}
	return ngrokConfig.HTTPEndpoint()
}

func optionsFrom(cmd *cli.Command) serviceOptions {
	return serviceOptions{
		configDir:     cmd.String("config-dir"),
		highScoreFile: cmd.String("highscore-file"),
		debug:         cmd.Bool("debug"),
	}
}

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the command tree. "serve" is the default.
func newApp() *cli.Command {
	serve := &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with API, WebSocket and MCP endpoint",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "port",
				Value:   "8080",
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
		}, append(serviceFlags, tunnelFlags...)...),
		Action: runServe,
	}

	return &cli.Command{
		Name:    "blockfall",
		Usage:   "falling-block puzzle game server",
		Version: Version,
		Commands: []*cli.Command{
			serve,
			{
				Name:  "mcp",
				Usage: "run an MCP stdio server, starting an internal API when none is reachable",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Value:   "http://localhost:8080",
						Usage:   "base URL of a running blockfall API",
						Sources: cli.EnvVars("BLOCKFALL_API_URL"),
					},
				}, serviceFlags...),
				Action: runMCP,
			},
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(cmd.Root().Writer, "%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
		DefaultCommand: "serve",
	}
}

func setupLogging(debug bool) {
	if debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

// initializeServices wires the config manager, high score file, session
// manager, websocket hub and game service.
func initializeServices(opts serviceOptions) (*services, error) {
	configManager, err := config.NewManager(opts.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	store := highscore.NewFileStore(opts.highScoreFile)
	hub := websocket.NewHub()

	sessionManager := session.NewManagerWithSetup(func(id string) ([]engine.Option, []loop.Option) {
		var renderer engine.Renderer = websocket.NewRenderer(hub, id)
		if opts.debug {
			renderer = engine.MultiRenderer{renderer, engine.LogRenderer{Name: id}}
		}
		return []engine.Option{
				engine.WithRenderer(renderer),
				engine.WithAudio(engine.LogAudio{Name: id}),
				engine.WithHighScoreStore(store),
			}, []loop.Option{
				loop.WithOnTick(func(state *engine.GameState) {
					hub.BroadcastToSession(id, state)
				}),
			}
	})

	gameService := service.NewGameService(sessionManager, configManager, store,
		service.WithStateListener(hub.BroadcastToSession))

	hub.OnCommand(func(ctx context.Context, sessionID, action string) error {
		if action == "start" {
			_, err := gameService.StartGame(ctx, sessionID)
			return err
		}
		_, err := gameService.Command(ctx, sessionID, action)
		return err
	})

	return &services{game: gameService, sessions: sessionManager, hub: hub}, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl time.Duration) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// newRouter mounts the API at the root and the MCP JSON-RPC endpoint at /mcp
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})
	return mainRouter
}

// runServe starts the HTTP server and blocks until SIGINT or SIGTERM
func runServe(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd.Bool("debug"))
	log.Printf("Starting %s v%s", AppName, Version)

	svc, err := initializeServices(optionsFrom(cmd))
	if err != nil {
		return err
	}
	defer svc.sessions.Close()

	go svc.hub.Run()
	defer svc.hub.Stop()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sessionCleanupRoutine(ctx, svc.sessions, cmd.Duration("session-ttl"))

	addr := net.JoinHostPort(cmd.String("host"), cmd.String("port"))
	mcpClient := mcp.NewClient("http://" + addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      newRouter(api.NewServer(svc.game, svc.hub), mcpClient),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	opts := tunnelOptionsFrom(cmd)
	if opts.enabled {
		go serveTunnel(ctx, httpServer, opts)
	}

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Println("Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	log.Println("Server stopped")
	return nil
}

// serveTunnel serves httpServer on an ngrok tunnel until the server shuts
// down. A missing token or a failed tunnel is logged and leaves the local
// listener running.
func serveTunnel(ctx context.Context, httpServer *http.Server, opts tunnelOptions) {
	if opts.authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")
	if opts.domain != "" {
		log.Printf("Using custom ngrok domain: %s", opts.domain)
	}

	tun, err := ngrok.Listen(ctx, opts.endpoint(), ngrok.WithAuthtoken(opts.authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	// Shutdown closes the tunnel along with the local listener
	if err := httpServer.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// apiReachable reports whether a blockfall API answers at baseURL
func apiReachable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves the API on a random loopback port and returns its
// base URL.
func startInternalAPI(svc *services) (string, *http.Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	httpServer := &http.Server{Handler: api.NewServer(svc.game, svc.hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Internal HTTP server error: %v", err)
		}
	}()

	return "http://" + listener.Addr().String(), httpServer, nil
}

// runMCP serves MCP over stdio. It reuses the API at --api-url when it
// answers, otherwise it starts an internal one.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd.Bool("debug"))

	baseURL := cmd.String("api-url")
	log.Printf("Checking for API server at %s...", baseURL)

	if apiReachable(baseURL) {
		log.Printf("API server found at %s, using it for MCP", baseURL)
	} else {
		log.Printf("No API server found, starting internal HTTP server")

		svc, err := initializeServices(optionsFrom(cmd))
		if err != nil {
			return err
		}
		defer svc.sessions.Close()

		go svc.hub.Run()
		defer svc.hub.Stop()

		go sessionCleanupRoutine(ctx, svc.sessions, cmd.Duration("session-ttl"))

		var httpServer *http.Server
		baseURL, httpServer, err = startInternalAPI(svc)
		if err != nil {
			return err
		}
		defer httpServer.Close()
		log.Printf("Internal HTTP server on %s", baseURL)
	}

	log.Println("MCP stdio server ready")
	if err := mcp.NewClient(baseURL).Serve(); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
