// Command color-clash starts the Color Clash game server.
//
// It supports two modes:
//  1. "server" (default) runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, debug logging, finished-game retention, and
// optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	log15 "github.com/inconshreveable/log15/v3"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/MwangiRon/color-clash/api"
	"github.com/MwangiRon/color-clash/game/service"
	"github.com/MwangiRon/color-clash/game/store"
	"github.com/MwangiRon/color-clash/room"
	"github.com/MwangiRon/color-clash/transport/mcp"
	"github.com/MwangiRon/color-clash/transport/websocket"
	"github.com/MwangiRon/color-clash/user"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Color Clash Server"
)

var log = log15.New("component", "main")

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Warn("error loading .env file", "err", err)
		}
	}

	cmd := &cli.Command{
		Name:    "color-clash",
		Usage:   "real-time two-player board game server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.DurationFlag{
				Name:    "retention",
				Value:   24 * time.Hour,
				Usage:   "How long finished games are kept in memory",
				Sources: cli.EnvVars("GAME_RETENTION"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		ArgsUsage: "[server|stdio-mcp]",
		Action:    run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := log15.LvlInfo
	if cmd.Bool("debug") {
		level = log15.LvlDebug
	}
	log15.Root().SetHandler(log15.LvlFilterHandler(level, log15.StdoutHandler))

	mode := cmd.Args().First()
	if mode == "" {
		mode = "server"
	}

	log.Info("starting", "app", AppName, "version", Version, "mode", mode)

	deps := initializeServices(cmd.Duration("retention"))

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		return runStdioMCP(deps)
	case "server", "http":
		return runHTTPServer(cmd, deps)
	default:
		return fmt.Errorf("unknown mode: %s (use 'server' or 'stdio-mcp')", mode)
	}
}

// services bundles the wired collaborators shared by both modes
type services struct {
	users *user.Registry
	rooms *room.Manager
	games service.GameService
}

// initializeServices wires the registry, room manager, store, and game
// service, and starts the finished-game retention sweep.
func initializeServices(retention time.Duration) *services {
	users := user.NewRegistry()
	rooms := room.NewManager()
	games := store.NewStore()
	gameService := service.NewGameService(games, rooms)

	go retentionSweep(games, retention)

	return &services{
		users: users,
		rooms: rooms,
		games: gameService,
	}
}

// retentionSweep periodically evicts finished games older than the
// retention window.
func retentionSweep(games *store.Store, retention time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		removed := games.CleanupFinished(retention)
		if removed > 0 {
			log.Info("evicted finished games", "count", removed)
		}
	}
}

// newHandler builds the combined HTTP handler: the REST API and hub at
// the root plus the /mcp JSON-RPC endpoint proxying through the MCP
// client.
func newHandler(deps *services, baseURL string) http.Handler {
	hub := websocket.NewHub(websocket.NewGateway(deps.users, deps.rooms, deps.games))
	go hub.Run()

	apiServer := api.NewServer(deps.users, deps.rooms, deps.games, hub)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
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

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp endpoint.
// If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(cmd *cli.Command, deps *services) error {
	addr := fmt.Sprintf("%s:%d", cmd.String("host"), int(cmd.Int("port")))
	handler := newHandler(deps, fmt.Sprintf("http://%s", addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info("HTTP server listening", "addr", addr)
		log.Info("endpoints",
			"rest", fmt.Sprintf("http://%s/api", addr),
			"websocket", fmt.Sprintf("ws://%s/ws", addr),
			"mcp", fmt.Sprintf("http://%s/mcp", addr))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", "err", err)
			os.Exit(1)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cmd, handler)
		}()
	}

	sig := <-stop
	log.Info("shutting down", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "err", err)
	}

	wg.Wait()
	log.Info("server stopped")
	return nil
}

// runNgrokTunnel serves the handler through an ngrok tunnel until ctx is done
func runNgrokTunnel(ctx context.Context, cmd *cli.Command, handler http.Handler) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Info("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Info("using custom ngrok domain", "domain", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error("failed to start ngrok tunnel", "err", err)
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Error("failed to close ngrok tunnel", "err", err)
		}
	}()

	log.Info("ngrok tunnel established", "url", tun.URL())

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Error("ngrok server error", "err", err)
	}
	log.Info("ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server.
// It tries to reuse an external API at http://localhost:8080; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCP(deps *services) error {
	externalURL := "http://localhost:8080"
	log.Info("checking for external API server", "url", externalURL)

	var baseURL string

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Info("external API server found, using it for MCP", "url", externalURL)
		baseURL = externalURL
	} else {
		log.Info("no external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := fmt.Sprintf("127.0.0.1:%d", listener.Addr().(*net.TCPAddr).Port)
		baseURL = fmt.Sprintf("http://%s", internalAddr)

		handler := newHandler(deps, baseURL)
		httpServer := &http.Server{Handler: handler}

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error("internal HTTP server error", "err", err)
			}
		}()

		// Give the listener a moment before the first proxy call
		time.Sleep(100 * time.Millisecond)

		log.Info("internal HTTP server started", "addr", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)

	log.Info("MCP stdio server ready", "api", baseURL)
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
