package main

import (
	"log"
	"net/http"

	gohandlers "github.com/gorilla/handlers"

	"github.com/taskforge/todo-api/auth"
	"github.com/taskforge/todo-api/config"
	"github.com/taskforge/todo-api/handlers"
	"github.com/taskforge/todo-api/middleware"
	"github.com/taskforge/todo-api/service"
	"github.com/taskforge/todo-api/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	st, err := store.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("opening store (%s): %v", cfg.DBDriver, err)
	}
	defer st.Close()
	log.Printf("connected to %s database", cfg.DBDriver)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenLifetime())
	users := service.NewUserService(st, tokens)
	todos := service.NewTodoService(st, users)

	h := handlers.New(users, todos)
	authn := middleware.NewAuthenticator(tokens, st)
	router := handlers.NewRouter(h, authn)

	cors := gohandlers.CORS(
		gohandlers.AllowedOrigins([]string{"*"}),
		gohandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}),
		gohandlers.AllowedHeaders([]string{"Authorization", "Content-Type", "Accept"}),
	)

	log.Printf("server listening on %s", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, cors(router)))
}
