package websocket

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/fortuna/wicket/internal/publisher"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development (TODO: restrict in production)
	},
}

// Server represents the WebSocket server
type Server struct {
	port   string
	server *http.Server
	hub    *Hub
	redis  *redis.Client
}

// NewServer creates a new WebSocket server
func NewServer(redisClient *redis.Client) *Server {
	return &Server{
		hub:   NewHub(),
		redis: redisClient,
	}
}

// Start starts the WebSocket server and the stream relay
func (s *Server) Start(ctx context.Context, port string) error {
	s.port = port

	go s.hub.Run()
	go s.relayStreams(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/matches/live", s.handleLiveMatches)
	mux.HandleFunc("/ws/health", s.handleHealth)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: mux,
	}

	log.Printf("WebSocket server listening on :%s", port)
	return s.server.ListenAndServe()
}

// relayStreams reads match events from the Redis streams and broadcasts
// them to connected clients. New connections only see events published
// after they join; history stays in the streams.
func (s *Server) relayStreams(ctx context.Context) {
	lastIDs := map[string]string{
		publisher.LiveStream:      "$",
		publisher.CompletedStream: "$",
	}

	for {
		if ctx.Err() != nil {
			return
		}

		streams := make([]string, 0, len(lastIDs)*2)
		ids := make([]string, 0, len(lastIDs))
		for name := range lastIDs {
			streams = append(streams, name)
		}
		for _, name := range streams {
			ids = append(ids, lastIDs[name])
		}

		res, err := s.redis.XRead(ctx, &redis.XReadArgs{
			Streams: append(streams, ids...),
			Block:   5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			log.Printf("⚠️ Stream read failed: %v", err)
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				lastIDs[stream.Stream] = msg.ID
				if data, ok := msg.Values["data"].(string); ok {
					s.hub.Broadcast([]byte(data))
				}
			}
		}
	}
}

// handleLiveMatches handles WebSocket connections for live match updates
func (s *Server) handleLiveMatches(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// BroadcastLiveUpdate sends a live match update to all connected clients
func (s *Server) BroadcastLiveUpdate(data []byte) {
	s.hub.Broadcast(data)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
