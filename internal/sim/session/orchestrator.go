package session

import (
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"triocell/internal/sim/engine"
)

// FrameLogEntry is one advanced tick as recorded by the frame journal.
type FrameLogEntry struct {
	ClientID string `json:"client_id"`
	RunID    string `json:"run_id"`
	Tick     uint64 `json:"tick"`
	Digest   string `json:"digest"`
	Backend  string `json:"backend"`
	Births   uint64 `json:"births"`
	Deaths   uint64 `json:"deaths"`
}

// FrameLogger persists advanced ticks. Implemented in
// internal/persistence/framelog; may be absent.
type FrameLogger interface {
	WriteFrame(entry FrameLogEntry) error
}

// RunRecord describes a run for the index: identity plus the full
// normalized config, enough to re-simulate it offline.
type RunRecord struct {
	RunID     string
	ClientID  string
	Backend   string
	Config    engine.Config
	StartedAt time.Time
}

// RunIndex is the read-model index of runs and digest checkpoints.
// Implemented in internal/persistence/indexdb; may be absent.
type RunIndex interface {
	RecordRun(rec RunRecord) error
	RecordProgress(runID string, tick uint64, digest string) error
}

// Options configures an Orchestrator.
type Options struct {
	// Defaults seeds the config of runs started without overrides. It is
	// normalized on construction.
	Defaults engine.Config

	// DropTTL is how long a disconnected session survives before it is
	// discarded together with its run.
	DropTTL time.Duration

	Logger *log.Logger
	Frames FrameLogger
	Index  RunIndex
}

// Orchestrator owns all live sessions, keyed by client identity. It only
// routes: every mutation of a session happens inside that session's own
// loop goroutine, so per-session ordering needs no locks.
type Orchestrator struct {
	opts Options

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool

	nextClientNum atomic.Uint64
	nextRunNum    atomic.Uint64
}

func NewOrchestrator(opts Options) *Orchestrator {
	if opts.DropTTL <= 0 {
		opts.DropTTL = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	opts.Defaults = engine.Normalize(opts.Defaults)
	return &Orchestrator{
		opts:     opts,
		sessions: map[string]*Session{},
	}
}

// DropTTL returns the configured disconnect deadline.
func (o *Orchestrator) DropTTL() time.Duration { return o.opts.DropTTL }

// SessionCount returns the number of live sessions, attached or not.
func (o *Orchestrator) SessionCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sessions)
}

// Attach binds a transport out-channel to the session for clientID,
// creating the session on first contact. An empty id gets a generated
// identity. Returns the resolved client id.
func (o *Orchestrator) Attach(clientID string, out chan []byte) string {
	if clientID == "" {
		clientID = fmt.Sprintf("c_%d_%d", o.nextClientNum.Add(1), time.Now().UnixNano())
	}
	s := o.getOrCreate(clientID)
	if s == nil {
		return clientID
	}
	select {
	case s.attach <- attachReq{out: out}:
	case <-s.done:
	}
	return clientID
}

// Detach removes the transport from clientID's session and arms its drop
// deadline. The out channel identifies which transport is leaving; a detach
// for an already-replaced transport is ignored. Unknown ids are ignored.
func (o *Orchestrator) Detach(clientID string, out chan []byte) {
	o.mu.Lock()
	s := o.sessions[clientID]
	o.mu.Unlock()
	if s == nil {
		return
	}
	select {
	case s.detach <- out:
	case <-s.done:
	}
}

// Deliver hands one raw inbound message to clientID's session. Unknown ids
// are ignored (the transport should have attached first).
func (o *Orchestrator) Deliver(clientID string, raw []byte) {
	o.mu.Lock()
	s := o.sessions[clientID]
	o.mu.Unlock()
	if s == nil {
		return
	}
	select {
	case s.ctrl <- raw:
	case <-s.done:
	}
}

// Teardown stops every session loop and forgets them all.
func (o *Orchestrator) Teardown() {
	o.mu.Lock()
	o.closed = true
	sessions := make([]*Session, 0, len(o.sessions))
	for _, s := range o.sessions {
		sessions = append(sessions, s)
	}
	o.sessions = map[string]*Session{}
	o.mu.Unlock()

	for _, s := range sessions {
		close(s.quit)
		<-s.done
	}
}

func (o *Orchestrator) getOrCreate(clientID string) *Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	if s, ok := o.sessions[clientID]; ok {
		return s
	}
	s := newSession(o, clientID)
	o.sessions[clientID] = s
	return s
}

// remove is called by a session loop when its drop deadline fires.
func (o *Orchestrator) remove(clientID string, s *Session) {
	o.mu.Lock()
	if o.sessions[clientID] == s {
		delete(o.sessions, clientID)
	}
	o.mu.Unlock()
	o.opts.Logger.Printf("session %s dropped after %s disconnect", clientID, o.opts.DropTTL)
}

func (o *Orchestrator) newRunID() string {
	return fmt.Sprintf("R%d", o.nextRunNum.Add(1))
}
