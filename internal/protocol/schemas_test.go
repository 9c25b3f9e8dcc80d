package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"triocell/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	startSchema := compile("start.schema.json")
	stateSchema := compile("state.schema.json")
	frameSchema := compile("frame.schema.json")
	errorSchema := compile("error.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "client_name":"viewer1",
	  "client_token":"tok-abc",
	  "max_queue":64
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "client_id":"c_1_1",
	  "drop_ttl_seconds":30
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var start any
	_ = json.Unmarshal([]byte(`{
	  "type":"START",
	  "protocol_version":"1.0",
	  "backend":"reference",
	  "config":{
	    "width":64,
	    "height":64,
	    "wrap_world":true,
	    "tick_rate_ui":3,
	    "chunk_ticks":4,
	    "seed":1337,
	    "init_mode":"triad",
	    "alive_ratio":0.22,
	    "repro_threshold":3,
	    "constants":{"max_energy10":100,"start_energy10":50}
	  }
	}`), &start)
	validate(startSchema, start)

	var state any
	_ = json.Unmarshal([]byte(`{
	  "type":"STATE",
	  "protocol_version":"1.0",
	  "phase":"running",
	  "has_run":true,
	  "run_id":"R1",
	  "tick":42,
	  "backend":"reference",
	  "seed":1337
	}`), &state)
	validate(stateSchema, state)

	var frame any
	_ = json.Unmarshal([]byte(`{
	  "type":"FRAME",
	  "protocol_version":"1.0",
	  "run_id":"R1",
	  "tick":42,
	  "digest":"01ab2f",
	  "backend":"reference",
	  "metrics":{
	    "empty":4000,"fire":30,"water":33,"grass":33,
	    "births":120,"deaths":88,"mean_energy10":47,"mean_age":3.25
	  },
	  "cells":{"encoding":"RLE","types":"AAEC","energy10":"ZAo=","age":"AAE="}
	}`), &frame)
	validate(frameSchema, frame)

	var errMsg any
	_ = json.Unmarshal([]byte(`{
	  "type":"ERROR",
	  "protocol_version":"1.0",
	  "code":"E_NO_ACTIVE_RUN",
	  "message":"no active run"
	}`), &errMsg)
	validate(errorSchema, errMsg)
}

// The messages the server actually builds must stay schema-valid.
func TestSchemas_ValidateBuiltMessages(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		s, err := jsonschema.Compile(filepath.Join("..", "..", "schemas", name))
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}
	roundtrip := func(v any) any {
		t.Helper()
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var out any
		if err := json.Unmarshal(b, &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return out
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		ClientID:        "c_9_9",
		DropTTLSeconds:  30,
	}
	if err := compile("welcome.schema.json").Validate(roundtrip(welcome)); err != nil {
		t.Fatalf("welcome: %v", err)
	}

	state := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Phase:           "idle",
		HasRun:          false,
	}
	if err := compile("state.schema.json").Validate(roundtrip(state)); err != nil {
		t.Fatalf("state: %v", err)
	}

	frame := protocol.FrameMsg{
		Type:            protocol.TypeFrame,
		ProtocolVersion: protocol.Version,
		RunID:           "R3",
		Tick:            7,
		Digest:          "0a1b2c",
		Backend:         "reference",
		Metrics:         protocol.Metrics{Empty: 10, Fire: 2, Water: 2, Grass: 2, MeanEnergy10: 50, MeanAge: 1.5},
	}
	if err := compile("frame.schema.json").Validate(roundtrip(frame)); err != nil {
		t.Fatalf("frame: %v", err)
	}
}
