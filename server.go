package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/power-four/api"
	"github.com/wricardo/power-four/game/config"
	"github.com/wricardo/power-four/game/service"
	"github.com/wricardo/power-four/game/session"
	"github.com/wricardo/power-four/transport/mcp"
	"github.com/wricardo/power-four/transport/websocket"
)

const (
	cleanupInterval = time.Hour
	syncInterval    = 5 * time.Second
)

type serverOptions struct {
	Host        string
	Port        int
	ConfigDir   string
	Persistence string
	SessionsDir string
	DatabaseURL string
	SessionTTL  time.Duration

	Ngrok       bool
	NgrokAuth   string
	NgrokDomain string
}

func serverOptionsFrom(cmd *cli.Command) serverOptions {
	return serverOptions{
		Host:        cmd.String("host"),
		Port:        cmd.Int("port"),
		ConfigDir:   cmd.String("config-dir"),
		Persistence: cmd.String("persistence"),
		SessionsDir: cmd.String("sessions-dir"),
		DatabaseURL: cmd.String("database-url"),
		SessionTTL:  cmd.Duration("session-ttl"),
		Ngrok:       cmd.Bool("ngrok"),
		NgrokAuth:   cmd.String("ngrok-auth"),
		NgrokDomain: cmd.String("ngrok-domain"),
	}
}

func (o serverOptions) addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// services holds everything initializeServices wires together
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence session.SessionPersistence
	close       func()
}

// initializeServices wires the config manager, session storage and the game service
func initializeServices(ctx context.Context, opts serverOptions) (*services, error) {
	configManager, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, closePersistence, err := newPersistence(ctx, opts, configManager)
	if err != nil {
		return nil, err
	}

	sessionManager := session.NewManager()
	if persistence != nil {
		sessionManager = session.NewManagerWithPersistence(persistence)
		if err := sessionManager.LoadPersistedSessions(); err != nil {
			log.WithError(err).Warn("failed to load persisted sessions")
		}
	}

	return &services{
		game:        service.NewGameService(sessionManager, configManager),
		sessions:    sessionManager,
		persistence: persistence,
		close:       closePersistence,
	}, nil
}

// newPersistence picks the session store named by opts.Persistence.
// "memory" returns a nil store.
func newPersistence(ctx context.Context, opts serverOptions, configs service.ConfigManager) (session.SessionPersistence, func(), error) {
	noop := func() {}

	switch opts.Persistence {
	case "", "file":
		fp, err := session.NewFilePersistence(opts.SessionsDir, configs)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		log.WithField("dir", opts.SessionsDir).Info("storing sessions on disk")
		return fp, noop, nil

	case "postgres":
		if opts.DatabaseURL == "" {
			return nil, nil, errors.New("postgres persistence needs --database-url")
		}
		pp, err := session.NewPostgresPersistence(ctx, opts.DatabaseURL, configs)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		log.Info("storing sessions in postgres")
		return pp, pp.Close, nil

	case "memory":
		log.Info("sessions are kept in memory only")
		return nil, noop, nil
	}

	return nil, nil, fmt.Errorf("unknown persistence %q (want file, postgres or memory)", opts.Persistence)
}

// newRootHandler mounts the API at / and the MCP proxy at /mcp
func newRootHandler(apiServer http.Handler, mcpServer *server.MCPServer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", apiServer)
	mux.Handle("/mcp", mcpHandler(mcpServer))
	return mux
}

// mcpHandler answers one JSON-RPC message per POST
func mcpHandler(mcpServer *server.MCPServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		response := mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			// notifications have no reply
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// runServer serves the REST API, websocket hub and /mcp endpoint until ctx is done
func runServer(ctx context.Context, opts serverOptions) error {
	svcs, err := initializeServices(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svcs.close()

	addr := opts.addr()
	hub := websocket.NewHub()
	apiServer := api.NewServer(svcs.game, hub)
	mcpClient := mcp.NewClient("http://" + addr)
	handler := newRootHandler(apiServer, mcpClient.GetMCPServer())

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	httpServer.BaseContext = func(net.Listener) context.Context { return gCtx }

	g.Go(func() error {
		hub.Run(gCtx)
		return nil
	})
	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"version": Version,
			"addr":    addr,
		}).Infof("%s listening", AppName)
		log.Infof("REST API: http://%s/api", addr)
		log.Infof("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		sessionCleanupRoutine(gCtx, svcs.sessions, opts.SessionTTL)
		return nil
	})
	if svcs.persistence != nil {
		g.Go(func() error {
			persistenceSyncRoutine(gCtx, svcs.sessions, svcs.persistence)
			return nil
		})
	}
	if opts.Ngrok {
		g.Go(func() error {
			runNgrokTunnel(gCtx, opts, handler)
			return nil
		})
	}

	err = g.Wait()
	if saveErr := svcs.sessions.SaveAllSessions(); saveErr != nil {
		log.WithError(saveErr).Warn("failed to save sessions on shutdown")
	}
	log.Info("server stopped")
	return err
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done.
// Tunnel failures are logged; the local server keeps running.
func runNgrokTunnel(ctx context.Context, opts serverOptions, handler http.Handler) {
	if opts.NgrokAuth == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if opts.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.NgrokDomain))
		log.WithField("domain", opts.NgrokDomain).Info("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.NgrokAuth))
	if err != nil {
		log.WithError(err).Error("failed to start ngrok tunnel")
		return
	}
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.WithField("url", ngrokURL).Info("ngrok tunnel established")
	log.Infof("  REST API (ngrok): %s/api", ngrokURL)
	log.Infof("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Infof("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		log.WithError(err).Error("ngrok server error")
	}
	log.Info("ngrok tunnel closed")
}

// sessionCleanupRoutine evicts sessions idle for longer than ttl
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl time.Duration) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			manager.CleanupExpiredSessions(ttl)
		}
	}
}

// persistenceSyncRoutine drops in-memory sessions whose stored copy was deleted
// behind the server's back (a removed file or row).
func persistenceSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneOrphanedSessions(manager, persistence)
		}
	}
}

func pruneOrphanedSessions(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, s := range manager.List() {
		if persistence.Exists(s.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(s.ID); err == nil {
			pruned++
			log.WithField("session_id", s.ID).Info("pruned session from memory (stored copy deleted)")
		}
	}
	return pruned
}
