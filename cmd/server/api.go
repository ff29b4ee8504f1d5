package main

import (
	"encoding/json"
	"net/http"
	"sort"

	"corsair.world/internal/sim/world"
	"corsair.world/internal/transport/ws"
)

// islandsHandler lists the currently materialized content for map
// overlays and external tooling.
func islandsHandler(eng *world.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		recs := eng.ActiveRecords()
		sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(recs)
	}
}

func statusHandler(eng *world.Engine, srv *ws.Server) http.HandlerFunc {
	type status struct {
		Ticks       uint64 `json:"ticks"`
		Clients     int    `json:"clients"`
		Islands     int    `json:"islands"`
		Generated   int    `json:"generated_chunks"`
		ViewerChunk string `json:"viewer_chunk"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(status{
			Ticks:       eng.Ticks(),
			Clients:     srv.ClientCount(),
			Islands:     eng.ActiveCount(),
			Generated:   eng.GeneratedCount(),
			ViewerChunk: srv.ViewerChunk().String(),
		})
	}
}
