package ws

import (
	"encoding/json"
	"log"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"corsair.world/internal/protocol"
	"corsair.world/internal/sim/world"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	eng, err := world.New(world.Config{
		Seed:          42,
		ChunkSize:     600,
		ViewDistance:  1,
		ItemsPerChunk: 3,
	})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	s := NewServer(eng, 20, log.New(os.Stdout, "[ws-test] ", 0))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	b, _ := json.Marshal(v)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func read(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func handshake(t *testing.T, conn *websocket.Conn) protocol.WelcomeMsg {
	t.Helper()
	send(t, conn, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      "bosun",
	})
	var welcome protocol.WelcomeMsg
	if err := json.Unmarshal(read(t, conn), &welcome); err != nil {
		t.Fatalf("welcome: %v", err)
	}
	if welcome.Type != protocol.TypeWelcome || welcome.PlayerID == "" {
		t.Fatalf("bad welcome: %+v", welcome)
	}
	return welcome
}

func TestHandshake_Welcome(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)
	welcome := handshake(t, conn)
	if welcome.WorldParams.Seed != 42 || welcome.WorldParams.ChunkSize != 600 {
		t.Fatalf("world params wrong: %+v", welcome.WorldParams)
	}
	if welcome.WorldParams.WaterDistance != 2 {
		t.Fatalf("water view distance should default to view+1, got %d", welcome.WorldParams.WaterDistance)
	}
}

func TestHandshake_VersionMismatch(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)
	send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: "0.1", PlayerName: "x"})
	var em protocol.ErrorMsg
	if err := json.Unmarshal(read(t, conn), &em); err != nil {
		t.Fatalf("error msg: %v", err)
	}
	if em.Type != protocol.TypeError || em.Code != protocol.ErrProtoVersion {
		t.Fatalf("want version error, got %+v", em)
	}
}

func TestTickBroadcast_SpawnsReachClient(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dial(t, ts)
	handshake(t, conn)

	send(t, conn, protocol.PosMsg{Type: protocol.TypePos, ProtocolVersion: protocol.Version, X: 10, Z: 10})

	// Wait for the POS to land, then drive one tick by hand.
	deadline := time.Now().Add(2 * time.Second)
	for {
		res := s.Step()
		if len(res.Spawned) > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("no spawns after POS")
		}
		time.Sleep(10 * time.Millisecond)
	}

	var tick protocol.TickMsg
	if err := json.Unmarshal(read(t, conn), &tick); err != nil {
		t.Fatalf("tick msg: %v", err)
	}
	if tick.Type != protocol.TypeTick || len(tick.Spawned) == 0 {
		t.Fatalf("bad tick broadcast: %+v", tick)
	}
	if len(tick.WaterSpawned) == 0 {
		t.Fatalf("tick missing water tiles")
	}
}

func TestProbe_RoundTrip(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dial(t, ts)
	handshake(t, conn)
	s.Step()

	// Far away from all generated content: must not be blocked.
	send(t, conn, protocol.ProbeMsg{
		Type:            protocol.TypeProbe,
		ProtocolVersion: protocol.Version,
		ProbeID:         "q1",
		X:               1e7,
		Z:               1e7,
	})
	for {
		var base protocol.BaseMessage
		msg := read(t, conn)
		_ = json.Unmarshal(msg, &base)
		if base.Type != protocol.TypeProbeRe {
			continue // skip tick broadcasts
		}
		var pr protocol.ProbeResultMsg
		if err := json.Unmarshal(msg, &pr); err != nil {
			t.Fatalf("probe result: %v", err)
		}
		if pr.ProbeID != "q1" || pr.Blocked {
			t.Fatalf("bad probe result: %+v", pr)
		}
		return
	}
}

func TestClientCount_DropsOnClose(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dial(t, ts)
	handshake(t, conn)
	if s.ClientCount() != 1 {
		t.Fatalf("client count %d", s.ClientCount())
	}
	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never dropped")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
