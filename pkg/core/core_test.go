package core

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestScan_Smoke(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "project.godot"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	res, err := Scan(context.Background(), Config{Root: dir})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if res.Detection().Engine != "Godot" {
		t.Fatalf("expected Godot, got %#v", res.Detection())
	}
	if len(DefaultEngines()) == 0 {
		t.Fatal("expected non-empty default engine set")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := MarshalResult(&buf, DetectionResult{Engine: Unknown}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"matches": []`)) {
		t.Fatalf("nil matches must encode as []: %s", buf.String())
	}
	res, err := UnmarshalResult(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if res.Engine != Unknown || res.Matches == nil {
		t.Fatalf("unexpected round trip: %#v", res)
	}
}

func TestLoadEngines_Missing(t *testing.T) {
	if _, err := LoadEngines(filepath.Join(t.TempDir(), "engines.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
