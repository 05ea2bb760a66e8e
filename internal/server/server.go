package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/svenkata/TabChatAPI/internal/adapter/utils"
	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/middleware"
	"github.com/svenkata/TabChatAPI/pkg/logx"
)

var (
	server  *http.Server
	_logger *logx.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

func CreateServer(listenAddr string) {
	_logger = logx.NewLogger("Server")

	r := utils.GetRouter()

	r.Router.Get("/", middleware.GetHandler)

	r.Router.Post("/tabs", middleware.SaveTabHandler)
	r.Router.Post("/tabs/upload", middleware.UploadTabHandler)
	r.Router.Get("/tabs", middleware.ListTabsHandler)
	r.Router.Delete("/tabs/{id}", middleware.DeleteTabHandler)

	r.Router.Post("/chats", middleware.CreateChatHandler)
	r.Router.Get("/chats", middleware.ListChatsHandler)
	r.Router.Delete("/chats/{id}", middleware.DeleteChatHandler)
	r.Router.Get("/chats/{id}/messages", middleware.GetMessagesHandler)
	r.Router.Post("/chats/{id}/messages", middleware.CreateMessageHandler)
	r.Router.Patch("/messages/{id}", middleware.EditMessageHandler)

	r.Router.Get("/status/{id}", middleware.GetStatusHandler)

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error :", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	println("\nServer is shutting down", state)

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully: %s", err)
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully is shutting down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
