package sora

import (
	"testing"
)

func TestParseFrames_PlainJSON(t *testing.T) {
	obj := ParseFrames([]byte(`{"id":"abc","status":"waiting"}`))
	if obj["id"] != "abc" {
		t.Fatalf("expected id=abc, got %v", obj["id"])
	}
	if obj["status"] != "waiting" {
		t.Fatalf("expected status=waiting, got %v", obj["status"])
	}
}

func TestParseFrames_EventStreamLastFrameWins(t *testing.T) {
	body := "data: {\"status\":\"processing\"}\n" +
		"data: {\"status\":\"running\"}\n" +
		"data: {\"results\":[{\"url\":\"https://cdn.example.com/v.mp4\"}]}\n"
	obj := ParseFrames([]byte(body))
	results, ok := obj["results"].([]any)
	if !ok || len(results) != 1 {
		t.Fatalf("expected final frame with results, got %v", obj)
	}
}

func TestParseFrames_SkipsMalformedTrailingLines(t *testing.T) {
	body := "data: {\"id\":\"job-1\"}\n" +
		"data: [DONE]\n" +
		"garbage line\n"
	obj := ParseFrames([]byte(body))
	if obj["id"] != "job-1" {
		t.Fatalf("expected last decodable frame, got %v", obj)
	}
}

func TestParseFrames_NoParseableContent(t *testing.T) {
	for _, body := range []string{"", "   \n  ", "not json at all", "data: still not json"} {
		obj := ParseFrames([]byte(body))
		if obj == nil {
			t.Fatalf("expected empty map for %q, got nil", body)
		}
		if len(obj) != 0 {
			t.Fatalf("expected empty map for %q, got %v", body, obj)
		}
	}
}

func TestPayload_UnwrapsNestedData(t *testing.T) {
	obj := map[string]any{
		"code": float64(0),
		"data": map[string]any{
			"results": []any{map[string]any{"url": "https://cdn.example.com/v.mp4"}},
		},
	}
	payload := Payload(obj)
	if _, ok := payload["results"]; !ok {
		t.Fatalf("expected nested data to be unwrapped, got %v", payload)
	}
}

func TestPayload_PassthroughWithoutDataWrapper(t *testing.T) {
	obj := map[string]any{"results": []any{}}
	payload := Payload(obj)
	if _, ok := payload["results"]; !ok {
		t.Fatalf("expected payload unchanged, got %v", payload)
	}
}

func TestPayload_NonObjectDataIsNotUnwrapped(t *testing.T) {
	obj := map[string]any{"data": "just a string", "status": "waiting"}
	payload := Payload(obj)
	if payload["status"] != "waiting" {
		t.Fatalf("expected top-level payload when data is not an object, got %v", payload)
	}
}
