// Package server exposes the HTTP API handlers.
package server

import (
	"github.com/SebPartof2/stw222-bot/board"
	"github.com/SebPartof2/stw222-bot/config"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	svc *board.Service
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(svc *board.Service, cfg *config.Config) *Handlers {
	return &Handlers{svc: svc, cfg: cfg}
}
