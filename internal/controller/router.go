package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (c *controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)

	r.HandleFunc("/ws", c.serveWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/rooms", c.listRooms)
		r.Post("/rooms", c.createRoom)
		r.Patch("/rooms/{room-id}", c.updateRoomSettings)
		r.Post("/users", c.createUser)
	})

	return r
}
