package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/handlers"
)

func init() { Register("jump", registerJump) }

func registerJump(r chi.Router, d deps.Deps) {
	r.Get("/jump", handlers.Jump(d))
}
