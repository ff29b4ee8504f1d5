// Package snapshot serializes the streaming engine's persistent state.
// The engine is fully re-derivable from its seed, so snapshots exist for
// fast resume (skip re-walking the viewer's whole path), not correctness.
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"corsair.world/internal/sim/biome"
	"corsair.world/internal/sim/content"
)

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed              int64   `json:"seed"`
	ChunkSize         float64 `json:"chunk_size"`
	ViewDistance      int     `json:"view_distance"`
	WaterViewDistance int     `json:"water_view_distance"`
	ItemsPerChunk     int     `json:"items_per_chunk"`

	ViewerX float64 `json:"viewer_x"`
	ViewerZ float64 `json:"viewer_z"`

	// Generated and Water are packed chunk keys. Active carries the full
	// records so resume does not regenerate culled chunks by accident.
	Generated []int64          `json:"generated"`
	Water     []int64          `json:"water"`
	Active    []content.Record `json:"active"`

	BiomeSeed int64       `json:"biome_seed"`
	Biomes    []biome.Def `json:"biomes"`
}

// WriteSnapshot writes a zstd-compressed snapshot: a JSON header line for
// tooling that only wants metadata, then the gob body.
func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Skip the header line; the gob body repeats it.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
