// Package httpapi holds the documented REST handlers that sit alongside the
// WebSocket transport: a stats endpoint reporting this replica's local
// connection counts. Health and readiness checks are registered inline in
// package server.
package httpapi

import (
	"encoding/json"
	"net/http"
)

// RoomStats is anything that can report this replica's local room and
// client counts. Implemented by *wsserver.Hub.
type RoomStats interface {
	Stats() (rooms int, clients int)
}

// statsResponse is the JSON body returned by StatsHandler.
type statsResponse struct {
	Rooms   int `json:"rooms"`
	Clients int `json:"clients"`
}

// StatsHandler reports how many rooms and clients are locally connected to
// this replica. It does not aggregate across replicas — each replica only
// knows about the players it is directly holding WebSocket connections for.
//
//	@Summary		Replica connection stats
//	@Description	Reports the room and client counts held by this replica
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	statsResponse
//	@Router			/stats [get]
func StatsHandler(rs RoomStats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms, clients := rs.Stats()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(statsResponse{Rooms: rooms, Clients: clients})
	}
}
