package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	PlayerID        string      `json:"player_id"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	Seed          int64      `json:"seed"`
	ChunkSize     float64    `json:"chunk_size"`
	ViewDistance  int        `json:"view_distance"`
	WaterDistance int        `json:"water_view_distance"`
	TickRateHz    int        `json:"tick_rate_hz"`
	Biomes        []BiomeRef `json:"biomes,omitempty"`
}

type BiomeRef struct {
	ID     string  `json:"id"`
	Name   string  `json:"name,omitempty"`
	Weight float64 `json:"weight"`
}

// POS (client -> server): viewer position for the next tick.
type PosMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	X               float64 `json:"x"`
	Z               float64 `json:"z"`
}

// TICK (server -> client): one lifecycle tick's spawn/despawn batch.
// Records go over the wire as placement payloads; the client expands
// them into meshes.
type TickMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Tick            uint64      `json:"tick"`
	Spawned         []RecordRef `json:"spawned,omitempty"`
	Despawned       []string    `json:"despawned,omitempty"`
	WaterSpawned    []string    `json:"water_spawned,omitempty"`
	WaterDespawned  []string    `json:"water_despawned,omitempty"`
}

type RecordRef struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Z         float64 `json:"z"`
	Chunk     string  `json:"chunk"`
	Archetype string  `json:"archetype"`
	Variant   int     `json:"variant"`
	DecorSeed uint64  `json:"decor_seed"`
	Radius    float64 `json:"radius"`
	Biome     string  `json:"biome,omitempty"`
}

// PROBE (client -> server): movement/teleport validation against the
// collision registry.
type ProbeMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	ProbeID         string  `json:"probe_id"`
	X               float64 `json:"x"`
	Z               float64 `json:"z"`
	Extra           float64 `json:"extra"`
}

// PROBE_RESULT (server -> client)
type ProbeResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ProbeID         string `json:"probe_id"`
	Blocked         bool   `json:"blocked"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
