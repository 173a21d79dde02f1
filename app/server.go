package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"liveattendance/internal/config"
	"liveattendance/internal/store"
)

type Server struct {
	Config  config.Config
	Store   store.Store
	Handler http.Handler
}

func NewFromEnv() (*Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	return New(cfg, st)
}

func New(cfg config.Config, st store.Store) (*Server, error) {
	h, err := NewHandler(cfg, st)
	if err != nil {
		return nil, err
	}
	return &Server{Config: cfg, Store: st, Handler: h}, nil
}

func (s *Server) Close() error {
	return s.Store.Close()
}
