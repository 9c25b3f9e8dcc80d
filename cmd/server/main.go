package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"triocell/internal/persistence/framelog"
	"triocell/internal/persistence/indexdb"
	"triocell/internal/sim/session"
	"triocell/internal/sim/tuning"
	"triocell/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		dropTTL    = flag.Duration("drop_ttl", 0, "disconnected session TTL (overrides tuning when > 0)")
		disableDB  = flag.Bool("disable_db", false, "disable the run index db")
		disableLog = flag.Bool("disable_frame_log", false, "disable the frame journal")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	_ = os.MkdirAll(*dataDir, 0o755)

	// Read-model index (does not affect sim determinism).
	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
	} else {
		logger.Printf("index db disabled")
	}

	var frames *framelog.FrameLogger
	if !*disableLog {
		frames = framelog.NewFrameLogger(*dataDir)
		defer frames.Close()
	} else {
		logger.Printf("frame journal disabled")
	}

	ttl := time.Duration(tune.DropTTLSeconds) * time.Second
	if *dropTTL > 0 {
		ttl = *dropTTL
	}

	opts := session.Options{
		Defaults: tune.EngineConfig(),
		DropTTL:  ttl,
		Logger:   logger,
	}
	if frames != nil {
		opts.Frames = frames
	}
	if idx != nil {
		opts.Index = idx
	}
	orch := session.NewOrchestrator(opts)

	ctx, cancel := signalContext()
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP triocell_sessions Live sessions, attached or awaiting reconnect.\n")
		fmt.Fprintf(rw, "# TYPE triocell_sessions gauge\n")
		fmt.Fprintf(rw, "triocell_sessions %d\n", orch.SessionCount())

		fmt.Fprintf(rw, "# HELP triocell_drop_ttl_seconds Disconnected session TTL.\n")
		fmt.Fprintf(rw, "# TYPE triocell_drop_ttl_seconds gauge\n")
		fmt.Fprintf(rw, "triocell_drop_ttl_seconds %d\n", int(orch.DropTTL()/time.Second))
	})
	if envBool("TC_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", ws.NewServer(orch, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
		orch.Teardown()
	}()

	logger.Printf("listening on %s (drop_ttl=%s)", *addr, ttl)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func envBool(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
