// Package encoding packs the frame cell arrays for the wire: run-length
// encoded varint pairs, base64 wrapped. State grids are mostly empty or
// uniform, so runs compress well.
package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeRLE encodes non-negative values into base64(varint pairs). The
// pairs are (value, run_len) repeated.
func EncodeRLE(vals []int32) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(vals) {
		v := vals[i]
		run := 1
		for j := i + 1; j < len(vals) && vals[j] == v; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(uint32(v)))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// EncodeRLEBytes is EncodeRLE for byte-valued arrays (cell types).
func EncodeRLEBytes(vals []uint8) string {
	widened := make([]int32, len(vals))
	for i, v := range vals {
		widened[i] = int32(v)
	}
	return EncodeRLE(widened)
}

func DecodeRLE(b64 string) ([]int32, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []int32
	for i := 0; i < len(raw); {
		v, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if v > 0x7FFFFFFF {
			return nil, fmt.Errorf("value too large: %d", v)
		}
		if run > 1<<26 {
			return nil, fmt.Errorf("run too long: %d", run)
		}
		for k := 0; k < int(run); k++ {
			out = append(out, int32(v))
		}
	}
	return out, nil
}
