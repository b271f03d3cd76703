package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/CrowderSoup/todo-collab/database"
	"github.com/CrowderSoup/todo-collab/handlers"
	"github.com/CrowderSoup/todo-collab/services"
)

func main() {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Open(cfg.Database.Driver, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	users := database.NewUserStore(db)
	todos := database.NewToDoStore(db)
	tasks := database.NewTaskStore(db)

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run(ctx)

	// Initialize services
	validate := services.NewValidator()
	userService, err := services.NewUserService(ctx, users, database.NewRoleStore(db), validate)
	if err != nil {
		return err
	}
	todoService := services.NewToDoService(todos, tasks, users, validate, hub)
	taskService, err := services.NewTaskService(ctx, tasks, todos, database.NewStateStore(db), validate, hub)
	if err != nil {
		return err
	}

	// Setup router
	r := handlers.NewRouter(handlers.Handlers{
		Users:  handlers.NewUserHandler(userService),
		ToDos:  handlers.NewToDoHandler(todoService),
		Tasks:  handlers.NewTaskHandler(taskService),
		Events: handlers.NewEventHandler(todoService, hub),
	}, cfg.Server.StaticDir)

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      c.Handler(r),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %d", cfg.Server.Port)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
