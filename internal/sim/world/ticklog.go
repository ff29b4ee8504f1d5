package world

// TickLogEntry is the compact per-tick record written to the event log.
type TickLogEntry struct {
	Tick        uint64  `json:"tick"`
	ViewerX     float64 `json:"viewer_x"`
	ViewerZ     float64 `json:"viewer_z"`
	ViewerChunk string  `json:"viewer_chunk"`

	Spawned   []string `json:"spawned,omitempty"`
	Despawned []string `json:"despawned,omitempty"`
	Generated int      `json:"generated,omitempty"`
	Deferred  int      `json:"deferred,omitempty"`
	Skipped   int      `json:"skipped,omitempty"`
}

// LogEntry flattens a tick result for the event log.
func (e *Engine) LogEntry(res Result) TickLogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry := TickLogEntry{
		Tick:        e.ticks,
		ViewerX:     e.viewerX,
		ViewerZ:     e.viewerZ,
		ViewerChunk: e.viewer.String(),
		Despawned:   res.Despawned,
		Generated:   res.Generated,
		Deferred:    res.Deferred,
		Skipped:     res.Skipped,
	}
	for _, r := range res.Spawned {
		entry.Spawned = append(entry.Spawned, r.ID)
	}
	return entry
}
