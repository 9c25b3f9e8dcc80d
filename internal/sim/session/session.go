package session

import (
	"encoding/json"
	"time"

	"triocell/internal/protocol"
	"triocell/internal/sim/encoding"
	"triocell/internal/sim/engine"
)

// DefaultBackend tags frames produced by this reference engine. Alternate
// compiled backends carry their own tag but must match its digests.
const DefaultBackend = "reference"

type attachReq struct {
	out chan []byte
}

// activeRun keeps the four run fields together: they are all present or the
// whole value is nil, never partial.
type activeRun struct {
	id      string
	backend string
	cfg     engine.Config
	sim     *engine.Simulator
}

// Session is one logical client. All mutable state lives inside run() and
// is touched only from that goroutine: control messages, attach/detach
// events and autoplay ticks are serialized by the loop's select.
type Session struct {
	clientID string
	orch     *Orchestrator

	ctrl   chan []byte
	attach chan attachReq
	detach chan chan []byte
	quit   chan struct{}
	done   chan struct{}
}

func newSession(o *Orchestrator, clientID string) *Session {
	s := &Session{
		clientID: clientID,
		orch:     o,
		ctrl:     make(chan []byte, 64),
		attach:   make(chan attachReq, 4),
		detach:   make(chan chan []byte, 4),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

// autoplayInterval converts the UI tick rate into the timer period, floored
// at 16ms.
func autoplayInterval(tickRateUI int) time.Duration {
	iv := time.Duration((1000+tickRateUI/2)/tickRateUI) * time.Millisecond
	if iv < 16*time.Millisecond {
		iv = 16 * time.Millisecond
	}
	return iv
}

func (s *Session) run() {
	defer close(s.done)

	var (
		run       *activeRun
		phase     = PhaseIdle
		out       chan []byte
		lastFrame []byte

		ticker *time.Ticker
		tickC  <-chan time.Time
		drop   *time.Timer
		dropC  <-chan time.Time
	)

	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tickC = nil
		}
	}
	// Always a fresh timer; a stale one must never fire against a replaced
	// simulator.
	startTicker := func() {
		stopTicker()
		if run == nil {
			return
		}
		ticker = time.NewTicker(autoplayInterval(run.cfg.TickRateUI))
		tickC = ticker.C
	}
	stopDrop := func() {
		if drop != nil {
			drop.Stop()
			drop = nil
			dropC = nil
		}
	}

	sendRaw := func(b []byte) {
		if out == nil {
			return
		}
		select {
		case out <- b:
		default:
			s.orch.opts.Logger.Printf("session %s: slow client, dropping message", s.clientID)
		}
	}
	send := func(v any) {
		b, err := json.Marshal(v)
		if err != nil {
			s.orch.opts.Logger.Printf("session %s: marshal: %v", s.clientID, err)
			return
		}
		sendRaw(b)
	}
	sendError := func(code, msg string) {
		send(protocol.ErrorMsg{
			Type:            protocol.TypeError,
			ProtocolVersion: protocol.Version,
			Code:            code,
			Message:         msg,
		})
	}
	stateMsg := func() protocol.StateMsg {
		m := protocol.StateMsg{
			Type:            protocol.TypeState,
			ProtocolVersion: protocol.Version,
			Phase:           string(phase),
			HasRun:          run != nil,
		}
		if run != nil {
			m.RunID = run.id
			m.Tick = run.sim.TickCount()
			m.Backend = run.backend
			seed := run.cfg.Seed
			m.Seed = &seed
		}
		return m
	}

	emitFrame := func(res engine.Result) {
		msg := frameMsg(run, res)
		b, err := json.Marshal(msg)
		if err != nil {
			s.orch.opts.Logger.Printf("session %s: marshal frame: %v", s.clientID, err)
			return
		}
		lastFrame = b
		sendRaw(b)
		if s.orch.opts.Frames != nil {
			if err := s.orch.opts.Frames.WriteFrame(FrameLogEntry{
				ClientID: s.clientID,
				RunID:    run.id,
				Tick:     res.Tick,
				Digest:   res.Digest,
				Backend:  run.backend,
				Births:   res.TotalBirths,
				Deaths:   res.TotalDeaths,
			}); err != nil {
				s.orch.opts.Logger.Printf("session %s: frame journal: %v", s.clientID, err)
			}
		}
		if s.orch.opts.Index != nil && res.Tick%uint64(run.cfg.ChunkTicks) == 0 {
			if err := s.orch.opts.Index.RecordProgress(run.id, res.Tick, res.Digest); err != nil {
				s.orch.opts.Logger.Printf("session %s: index progress: %v", s.clientID, err)
			}
		}
	}

	recordRun := func() {
		if s.orch.opts.Index == nil {
			return
		}
		if err := s.orch.opts.Index.RecordRun(RunRecord{
			RunID:     run.id,
			ClientID:  s.clientID,
			Backend:   run.backend,
			Config:    run.cfg,
			StartedAt: time.Now().UTC(),
		}); err != nil {
			s.orch.opts.Logger.Printf("session %s: index run: %v", s.clientID, err)
		}
	}

	handle := func(raw []byte) {
		// The authoritative phase is re-broadcast after every handled
		// message, error or not, so clients can always resynchronize.
		defer func() { send(stateMsg()) }()

		base, err := protocol.DecodeBase(raw)
		if err != nil || base.Type == "" {
			sendError(protocol.ErrProtoBadRequest, "malformed control message")
			return
		}

		cmd := Command{Kind: base.Type}
		var startMsg protocol.StartMsg
		var resetMsg protocol.ResetMsg
		switch base.Type {
		case protocol.TypeStart:
			if err := json.Unmarshal(raw, &startMsg); err != nil {
				sendError(protocol.ErrProtoBadRequest, "malformed START: "+err.Error())
				return
			}
		case protocol.TypeStep:
			var stepMsg protocol.StepMsg
			if err := json.Unmarshal(raw, &stepMsg); err != nil {
				sendError(protocol.ErrProtoBadRequest, "malformed STEP: "+err.Error())
				return
			}
			cmd.Ticks = stepMsg.Ticks
		case protocol.TypeReset:
			if err := json.Unmarshal(raw, &resetMsg); err != nil {
				sendError(protocol.ErrProtoBadRequest, "malformed RESET: "+err.Error())
				return
			}
		}

		snap := Snapshot{HasRun: run != nil, Phase: phase}
		if run == nil {
			snap.Phase = PhaseIdle
		}
		decision := Decide(snap, cmd)

		switch decision.Kind {
		case ActionStartNew:
			cfg := engine.Normalize(applyPatch(s.orch.opts.Defaults, startMsg.Config))
			backend := startMsg.Backend
			if backend == "" {
				backend = DefaultBackend
			}
			run = &activeRun{
				id:      s.orch.newRunID(),
				backend: backend,
				cfg:     cfg,
				sim:     engine.NewSimulator(cfg),
			}
			phase = PhaseRunning
			recordRun()
			emitFrame(run.sim.Snapshot())
			startTicker()

		case ActionResume:
			phase = PhaseRunning
			startTicker()

		case ActionPause:
			phase = PhasePaused
			stopTicker()

		case ActionReset:
			// Cancel the timer before swapping the simulator out.
			stopTicker()
			cfg := applyPatch(run.cfg, resetMsg.Config)
			if resetMsg.Seed != nil {
				cfg.Seed = *resetMsg.Seed
			}
			cfg = engine.Normalize(cfg)
			run.cfg = cfg
			run.sim = engine.NewSimulator(cfg)
			recordRun()
			emitFrame(run.sim.Snapshot())
			if phase == PhaseRunning {
				startTicker()
			}

		case ActionStep:
			for _, res := range run.sim.StepMany(decision.Ticks) {
				emitFrame(res)
			}

		case ActionStop:
			stopTicker()
			run = nil
			phase = PhaseIdle
			lastFrame = nil
			send(protocol.InfoMsg{
				Type:            protocol.TypeInfo,
				ProtocolVersion: protocol.Version,
				Message:         "run stopped",
			})

		case ActionError:
			code := protocol.ErrUnknownType
			if run == nil && protocol.IsControl(base.Type) {
				code = protocol.ErrNoActiveRun
			}
			sendError(code, decision.Reason)

		case ActionNoop:
		}
	}

	for {
		select {
		case raw := <-s.ctrl:
			handle(raw)

		case req := <-s.attach:
			stopDrop()
			out = req.out
			send(stateMsg())
			if lastFrame != nil {
				// Verbatim replay, not a re-simulation: the first tick seen
				// after reconnect equals the tick at disconnect.
				sendRaw(lastFrame)
			}
			if run != nil && phase == PhaseRunning {
				startTicker()
			}

		case gone := <-s.detach:
			// A detach for an already-replaced transport is stale: the
			// client reconnected before the old reader noticed the close.
			if gone != out {
				continue
			}
			out = nil
			stopTicker()
			stopDrop()
			drop = time.NewTimer(s.orch.opts.DropTTL)
			dropC = drop.C

		case <-tickC:
			// A missed tick is simply skipped; nothing advances without a
			// running phase and an open transport.
			if run == nil || phase != PhaseRunning || out == nil {
				continue
			}
			emitFrame(run.sim.Step())

		case <-dropC:
			stopTicker()
			s.orch.remove(s.clientID, s)
			return

		case <-s.quit:
			stopTicker()
			stopDrop()
			return
		}
	}
}

// frameMsg builds the wire frame for one result, cell payload included.
func frameMsg(run *activeRun, res engine.Result) protocol.FrameMsg {
	return protocol.FrameMsg{
		Type:            protocol.TypeFrame,
		ProtocolVersion: protocol.Version,
		RunID:           run.id,
		Tick:            res.Tick,
		Digest:          res.Digest,
		Backend:         run.backend,
		Metrics: protocol.Metrics{
			Empty:        res.Stats.Empty,
			Fire:         res.Stats.Fire,
			Water:        res.Stats.Water,
			Grass:        res.Stats.Grass,
			Births:       res.TotalBirths,
			Deaths:       res.TotalDeaths,
			MeanEnergy10: res.Stats.MeanEnergy10,
			MeanAge:      res.Stats.MeanAge,
		},
		Cells: &protocol.CellsPayload{
			Encoding: "RLE",
			Types:    encoding.EncodeRLEBytes(res.State.Types),
			Energy10: encoding.EncodeRLE(res.State.Energy10),
			Age:      encoding.EncodeRLE(res.State.Age),
		},
	}
}
