package sora

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ParseFrames decodes an upstream response body that is either a plain JSON
// object or newline-delimited "data: <json>" event-stream frames. Whole-body
// decode is attempted first; otherwise lines are scanned in reverse so the
// most recent frame wins (the upstream may interleave partial frames and emit
// a final summary frame last). A body with no parseable content yields an
// empty map, never an error.
func ParseFrames(raw []byte) map[string]any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return map[string]any{}
	}

	var whole map[string]any
	if err := json.Unmarshal(trimmed, &whole); err == nil && whole != nil {
		return whole
	}

	lines := strings.Split(string(trimmed), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		line = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if line == "" {
			continue
		}
		var frame map[string]any
		if err := json.Unmarshal([]byte(line), &frame); err == nil && frame != nil {
			return frame
		}
	}
	return map[string]any{}
}

// Payload normalizes the upstream's inconsistent nesting: the effective
// payload is the "data" field when that field is itself an object, otherwise
// the decoded object unchanged.
func Payload(obj map[string]any) map[string]any {
	if obj == nil {
		return map[string]any{}
	}
	if data, ok := obj["data"].(map[string]any); ok {
		return data
	}
	return obj
}
