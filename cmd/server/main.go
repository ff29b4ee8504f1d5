package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"corsair.world/internal/persistence/indexdb"
	persistlog "corsair.world/internal/persistence/log"
	"corsair.world/internal/persistence/snapshot"
	"corsair.world/internal/sim/tuning"
	"corsair.world/internal/sim/world"
	"corsair.world/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int64("seed", 0, "world seed override (0 = use tuning)")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite tick/snapshot index")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}
	cfg := tune.WorldConfig()
	if *seed != 0 {
		cfg.Seed = *seed
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	_ = os.MkdirAll(worldDir, 0o755)

	eng, err := world.New(cfg)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	for _, d := range tune.BiomeDefs() {
		eng.RegisterBiome(d)
	}

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(worldDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
	}

	// Resume from snapshot when one is available.
	toLoad := strings.TrimSpace(*snapPath)
	if toLoad == "" && *loadLatest {
		toLoad = latestSnapshot(worldDir)
	}
	if toLoad != "" {
		snap, err := snapshot.ReadSnapshot(toLoad)
		if err != nil {
			logger.Fatalf("read snapshot %s: %v", toLoad, err)
		}
		if err := eng.ImportSnapshot(snap); err != nil {
			logger.Fatalf("import snapshot: %v", err)
		}
		logger.Printf("resumed from %s at tick %d (%d chunks generated)",
			toLoad, snap.Header.Tick, len(snap.Generated))
	}

	tickLog := persistlog.NewTickLogger(worldDir)
	defer tickLog.Close()

	srv := ws.NewServer(eng, tune.TickRateHz, logger)
	srv.OnTick = func(res world.Result) {
		entry := eng.LogEntry(res)
		if err := tickLog.WriteTick(entry); err != nil {
			logger.Printf("tick log: %v", err)
		}
		if idx != nil {
			_ = idx.WriteTick(entry)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", srv.Handler())
	mux.HandleFunc("/api/islands", islandsHandler(eng))
	mux.HandleFunc("/api/status", statusHandler(eng, srv))
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Fatalf("listen %s: %v", *addr, err)
	}
	httpSrv := &http.Server{Handler: mux}
	go func() {
		if err := httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()
	logger.Printf("world %s listening on %s (seed=%d chunk=%v view=%d)",
		*worldID, *addr, cfg.Seed, cfg.ChunkSize, cfg.ViewDistance)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go srv.Run(ctx)
	go snapshotLoop(ctx, eng, idx, worldDir, *worldID, tune.SnapshotEveryTicks, logger)

	<-ctx.Done()
	logger.Printf("shutting down")

	writeSnapshot(eng, idx, worldDir, *worldID, logger)

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutCtx)
}

func snapshotLoop(ctx context.Context, eng *world.Engine, idx *indexdb.SQLiteIndex, worldDir, worldID string, everyTicks int, logger *log.Logger) {
	if everyTicks <= 0 {
		return
	}
	var last uint64
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			now := eng.Ticks()
			if now-last >= uint64(everyTicks) {
				writeSnapshot(eng, idx, worldDir, worldID, logger)
				last = now
			}
		}
	}
}

func writeSnapshot(eng *world.Engine, idx *indexdb.SQLiteIndex, worldDir, worldID string, logger *log.Logger) {
	snap := eng.ExportSnapshot(worldID)
	path := filepath.Join(worldDir, "snapshots",
		time.Now().UTC().Format("20060102-150405")+".snap.zst")
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		logger.Printf("write snapshot: %v", err)
		return
	}
	if idx != nil {
		idx.RecordSnapshot(path, snap)
	}
	logger.Printf("snapshot %s (tick=%d generated=%d active=%d)",
		path, snap.Header.Tick, len(snap.Generated), len(snap.Active))
}

func latestSnapshot(worldDir string) string {
	dir := filepath.Join(worldDir, "snapshots")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	best := ""
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".snap.zst") {
			continue
		}
		if e.Name() > best {
			best = e.Name()
		}
	}
	if best == "" {
		return ""
	}
	return filepath.Join(dir, best)
}
