// Package ws streams lifecycle tick results to browser clients and
// answers movement probes. It is a thin event pipe over the engine; the
// client owns all rendering and the engine owns all world state.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"corsair.world/internal/protocol"
	"corsair.world/internal/sim/grid"
	"corsair.world/internal/sim/world"
)

type Server struct {
	eng *world.Engine
	log *log.Logger

	tickRate int
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	viewerX float64
	viewerZ float64
	nextID  uint64

	// OnTick receives each tick result after broadcast; the host hangs
	// event logging and indexing off it.
	OnTick func(world.Result)
}

type client struct {
	id  string
	out chan []byte
}

func NewServer(eng *world.Engine, tickRateHz int, logger *log.Logger) *Server {
	if tickRateHz <= 0 {
		tickRateHz = 20
	}
	return &Server{
		eng:      eng,
		log:      logger,
		tickRate: tickRateHz,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		clients: map[*client]struct{}{},
	}
}

// Run drives the engine at the configured tick rate until ctx ends. The
// engine follows the most recent viewer position any client reported.
func (s *Server) Run(ctx context.Context) {
	interval := time.Second / time.Duration(s.tickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Step()
		}
	}
}

// Step runs one lifecycle tick at the latest reported viewer position
// and broadcasts the result. Hosts that own their own frame loop call
// this instead of Run.
func (s *Server) Step() world.Result {
	s.mu.Lock()
	x, z := s.viewerX, s.viewerZ
	s.mu.Unlock()

	res := s.eng.Tick(x, z)
	s.broadcastTick(res)
	if s.OnTick != nil {
		s.OnTick(res)
	}
	return res
}

func (s *Server) broadcastTick(res world.Result) {
	if len(res.Spawned) == 0 && len(res.Despawned) == 0 &&
		len(res.WaterSpawned) == 0 && len(res.WaterDespawned) == 0 {
		return
	}
	b, err := json.Marshal(tickMsg(s.eng.Ticks(), res))
	if err != nil {
		s.log.Printf("marshal tick: %v", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.out <- b:
		default:
			// Slow client: drop the frame rather than stall the tick.
		}
	}
}

func tickMsg(tick uint64, res world.Result) protocol.TickMsg {
	m := protocol.TickMsg{
		Type:            protocol.TypeTick,
		ProtocolVersion: protocol.Version,
		Tick:            tick,
		Despawned:       res.Despawned,
	}
	for _, r := range res.Spawned {
		m.Spawned = append(m.Spawned, protocol.RecordRef{
			ID:        r.ID,
			X:         r.X,
			Z:         r.Z,
			Chunk:     r.Chunk.String(),
			Archetype: string(r.Archetype),
			Variant:   r.Variant,
			DecorSeed: r.DecorSeed,
			Radius:    r.Radius,
			Biome:     r.Biome,
		})
	}
	for _, k := range res.WaterSpawned {
		m.WaterSpawned = append(m.WaterSpawned, k.String())
	}
	for _, k := range res.WaterDespawned {
		m.WaterDespawned = append(m.WaterDespawned, k.String())
	}
	return m
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		c := s.handshake(conn)
		if c == nil {
			return
		}
		defer s.drop(c)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-c.out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			s.handleMessage(c, msg)
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) *client {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"),
			time.Now().Add(time.Second))
		return nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil
	}
	if hello.ProtocolVersion != protocol.Version {
		b, _ := json.Marshal(protocol.ErrorMsg{
			Type:            protocol.TypeError,
			ProtocolVersion: protocol.Version,
			Code:            protocol.ErrProtoVersion,
			Message:         fmt.Sprintf("server speaks %s", protocol.Version),
		})
		_ = conn.WriteMessage(websocket.TextMessage, b)
		return nil
	}

	s.mu.Lock()
	s.nextID++
	c := &client{
		id:  fmt.Sprintf("P%d", s.nextID),
		out: make(chan []byte, 256),
	}
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	cfg := s.eng.Config()
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        c.id,
		WorldParams: protocol.WorldParams{
			Seed:          cfg.Seed,
			ChunkSize:     cfg.ChunkSize,
			ViewDistance:  cfg.ViewDistance,
			WaterDistance: cfg.WaterViewDistance,
			TickRateHz:    s.tickRate,
		},
	}
	b, _ := json.Marshal(welcome)
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		s.drop(c)
		return nil
	}
	s.log.Printf("client %s joined", c.id)
	return c
}

func (s *Server) handleMessage(c *client, msg []byte) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		s.sendError(c, protocol.ErrProtoBadRequest, "bad json")
		return
	}
	if base.ProtocolVersion != protocol.Version {
		s.sendError(c, protocol.ErrProtoVersion, "")
		return
	}
	switch base.Type {
	case protocol.TypePos:
		var pos protocol.PosMsg
		if err := json.Unmarshal(msg, &pos); err != nil {
			s.sendError(c, protocol.ErrProtoBadRequest, "bad POS")
			return
		}
		s.mu.Lock()
		s.viewerX, s.viewerZ = pos.X, pos.Z
		s.mu.Unlock()
	case protocol.TypeProbe:
		var probe protocol.ProbeMsg
		if err := json.Unmarshal(msg, &probe); err != nil {
			s.sendError(c, protocol.ErrProtoBadRequest, "bad PROBE")
			return
		}
		blocked := s.eng.OverlapsAny(probe.X, probe.Z, probe.Extra)
		b, _ := json.Marshal(protocol.ProbeResultMsg{
			Type:            protocol.TypeProbeRe,
			ProtocolVersion: protocol.Version,
			ProbeID:         probe.ProbeID,
			Blocked:         blocked,
		})
		select {
		case c.out <- b:
		default:
		}
	default:
		// Unknown types are ignored so older clients keep working.
	}
}

func (s *Server) sendError(c *client, code, msg string) {
	b, _ := json.Marshal(protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         msg,
	})
	select {
	case c.out <- b:
	default:
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.out)
		s.log.Printf("client %s left", c.id)
	}
}

func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// ViewerChunk exposes the chunk the engine is following, for status
// endpoints.
func (s *Server) ViewerChunk() grid.Coord {
	return s.eng.ViewerChunk()
}
