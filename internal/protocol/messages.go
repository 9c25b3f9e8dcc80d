package protocol

// HELLO (client -> server). ClientToken is the session identity: the same
// token routes to the same session across reconnects within the drop TTL.
// Empty token means "generate one for me".
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name,omitempty"`
	ClientToken     string `json:"client_token,omitempty"`
	MaxQueue        int    `json:"max_queue,omitempty"`
}

// WELCOME (server -> client).
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientID        string `json:"client_id"`
	DropTTLSeconds  int    `json:"drop_ttl_seconds"`
}

// ConstantsPatch overrides individual transition constants. All values are
// integer tenths.
type ConstantsPatch struct {
	MaxEnergy10     *int32 `json:"max_energy10,omitempty"`
	StartEnergy10   *int32 `json:"start_energy10,omitempty"`
	SpawnEnergy10   *int32 `json:"spawn_energy10,omitempty"`
	ThreatPenalty10 *int32 `json:"threat_penalty10,omitempty"`
	AllyBonus10     *int32 `json:"ally_bonus10,omitempty"`
	PreyBonus10     *int32 `json:"prey_bonus10,omitempty"`
	AgingDrain10    *int32 `json:"aging_drain10,omitempty"`
}

// ConfigPatch is the partial run config carried by START and RESET. Absent
// fields keep their current (or default) values.
type ConfigPatch struct {
	Width          *int            `json:"width,omitempty"`
	Height         *int            `json:"height,omitempty"`
	WrapWorld      *bool           `json:"wrap_world,omitempty"`
	TickRateUI     *int            `json:"tick_rate_ui,omitempty"`
	ChunkTicks     *int            `json:"chunk_ticks,omitempty"`
	Seed           *int64          `json:"seed,omitempty"`
	InitMode       *string         `json:"init_mode,omitempty"`
	AliveRatio     *float64        `json:"alive_ratio,omitempty"`
	ReproThreshold *int            `json:"repro_threshold,omitempty"`
	Constants      *ConstantsPatch `json:"constants,omitempty"`
}

// START (client -> server).
type StartMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version,omitempty"`
	Config          *ConfigPatch `json:"config,omitempty"`
	Backend         string       `json:"backend,omitempty"`
}

// STEP (client -> server). Ticks defaults to 1.
type StepMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
	Ticks           *int   `json:"ticks,omitempty"`
}

// RESET (client -> server). Seed and Config optionally override the current
// run parameters; the run id and phase are preserved.
type ResetMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version,omitempty"`
	Seed            *int64       `json:"seed,omitempty"`
	Config          *ConfigPatch `json:"config,omitempty"`
}

// STATE (server -> client): the authoritative session snapshot, sent after
// every handled control message and on every (re)connect.
type StateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Phase           string `json:"phase"`
	HasRun          bool   `json:"has_run"`
	RunID           string `json:"run_id,omitempty"`
	Tick            uint64 `json:"tick"`
	Backend         string `json:"backend,omitempty"`
	Seed            *int64 `json:"seed,omitempty"`
}

// Metrics mirrors the per-tick aggregates on the wire. Births and deaths
// are cumulative over the run.
type Metrics struct {
	Empty        int     `json:"empty"`
	Fire         int     `json:"fire"`
	Water        int     `json:"water"`
	Grass        int     `json:"grass"`
	Births       uint64  `json:"births"`
	Deaths       uint64  `json:"deaths"`
	MeanEnergy10 int     `json:"mean_energy10"`
	MeanAge      float64 `json:"mean_age"`
}

// CellsPayload is the optional full-state frame payload: the three state
// arrays, run-length encoded and base64 packed.
type CellsPayload struct {
	Encoding string `json:"encoding"` // "RLE"
	Types    string `json:"types"`
	Energy10 string `json:"energy10"`
	Age      string `json:"age"`
}

// FRAME (server -> client): one advanced tick.
type FrameMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	RunID           string        `json:"run_id"`
	Tick            uint64        `json:"tick"`
	Digest          string        `json:"digest"`
	Backend         string        `json:"backend"`
	Metrics         Metrics       `json:"metrics"`
	Cells           *CellsPayload `json:"cells,omitempty"`
}

// INFO (server -> client): diagnostics.
type InfoMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Message         string `json:"message"`
}

// ERROR (server -> client). Message is always human-readable; Code is one
// of the E_* constants.
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}
