package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// create the HTTP server
func (a *App) InitializeServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  time.Duration(a.Config.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.Config.Server.WriteTimeoutSeconds) * time.Second,
	}
}

// StartServer serves until SIGINT or SIGTERM, then drains in-flight
// requests. The caller closes the cache and the store afterwards.
func (a *App) StartServer() {
	errCh := make(chan error, 1)
	go func() {
		a.Log.Printf("Starting server on %s", a.Server.Addr)
		a.Log.Printf("Swagger UI available at: http://localhost%s/swagger/index.html", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		a.Log.Printf("Received %s, shutting down server...", sig)
	case err := <-errCh:
		a.Log.Errorf("Failed to start server: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(a.Config.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := a.Server.Shutdown(ctx); err != nil {
		a.Log.Errorf("Server forced to shutdown: %v", err)
		return
	}
	a.Log.Println("Server exited")
}
