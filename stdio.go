package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/power-four/api"
	"github.com/wricardo/power-four/transport/mcp"
	"github.com/wricardo/power-four/transport/websocket"
)

// apiAvailable reports whether a Power Four API answers at baseURL
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves the REST API on a random loopback port until ctx is done
func startInternalAPI(ctx context.Context, opts serverOptions) (string, error) {
	svcs, err := initializeServices(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("failed to initialize services: %w", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		svcs.close()
		return "", fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	httpServer := &http.Server{Handler: api.NewServer(svcs.game, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("internal HTTP server error")
		}
	}()
	go func() {
		<-ctx.Done()
		httpServer.Close()
		if err := svcs.sessions.SaveAllSessions(); err != nil {
			log.WithError(err).Warn("failed to save sessions on shutdown")
		}
		svcs.close()
	}()

	return "http://" + listener.Addr().String(), nil
}

// runStdioMCP runs an MCP stdio server against apiURL, or against an
// internal API when nothing answers there
func runStdioMCP(ctx context.Context, apiURL string, opts serverOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	baseURL := apiURL
	if apiAvailable(ctx, apiURL) {
		log.WithField("url", apiURL).Info("using external API server for MCP")
	} else {
		internalURL, err := startInternalAPI(ctx, opts)
		if err != nil {
			return err
		}
		baseURL = internalURL
		log.WithField("url", baseURL).Info("no external API server found, started internal one")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")

	return server.ServeStdio(mcpClient.GetMCPServer())
}
