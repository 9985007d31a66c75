package services

import (
	"strings"
	"testing"
)

func TestCharacterDescription_KnownAndUnknown(t *testing.T) {
	if desc := CharacterDescription("熊大熊二"); !strings.Contains(desc, "bears") {
		t.Fatalf("unexpected description for known character: %q", desc)
	}
	if desc := CharacterDescription("someone new"); desc != "a cute 3D educational character" {
		t.Fatalf("expected generic fallback, got %q", desc)
	}
}

func TestBuildScenePrompt(t *testing.T) {
	prompt := BuildScenePrompt("watercolor", "a wise little owl with glasses, 3D stylized", "an owl drawing the number five")
	want := "watercolor animation, a wise little owl with glasses, 3D stylized, an owl drawing the number five, vibrant colors."
	if prompt != want {
		t.Fatalf("got %q, want %q", prompt, want)
	}
}

func TestBuildScenePrompt_DefaultStyle(t *testing.T) {
	prompt := BuildScenePrompt("", "a mascot", "counting blocks")
	if !strings.HasPrefix(prompt, DefaultStyle+" animation") {
		t.Fatalf("expected default style prefix, got %q", prompt)
	}
}
