// internal/handlers/api_server.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jason-s-yu/uno/internal/config"
	"github.com/jason-s-yu/uno/internal/middleware"
	"github.com/jason-s-yu/uno/internal/session"
	"github.com/sirupsen/logrus"
)

// Server holds what the HTTP and websocket handlers need.
type Server struct {
	Orchestrator *session.Orchestrator
	Config       *config.Config

	logger *logrus.Logger
}

func NewServer(o *session.Orchestrator, cfg *config.Config, logger *logrus.Logger) *Server {
	return &Server{
		Orchestrator: o,
		Config:       cfg,
		logger:       logger,
	}
}

// Router builds the HTTP routes: read-only listings plus the game socket.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.LogMiddleware(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Heartbeat("/ping"))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.Config.App.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/rooms", s.ListRoomsHandler)
	r.Get("/rooms/{id}", s.GetRoomHandler)
	r.Get("/players", s.ListPlayersHandler)
	r.Get("/ws", s.WSHandler())
	return r
}

// ListRoomsHandler returns the ids of every room.
func (s *Server) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"rooms": s.Orchestrator.Rooms.RoomIDs(),
	})
}

// GetRoomHandler returns the public snapshot of one room.
func (s *Server) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	room, ok := s.Orchestrator.Rooms.GetRoom(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "room not found")
		return
	}
	s.writeJSON(w, http.StatusOK, room.Snapshot())
}

// ListPlayersHandler returns every known identity.
func (s *Server) ListPlayersHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"players": s.Orchestrator.Directory.List(),
	})
}
