package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/enginesniff/enginesniff/internal/classify"
	"github.com/enginesniff/enginesniff/internal/signature"
	"github.com/enginesniff/enginesniff/internal/types"
)

func godotReport() classify.Report {
	return classify.Report{
		Result: types.DetectionResult{Engine: "Godot", Confidence: 1.0, Matches: []string{"project.godot", "game.pck"}},
		Scores: []types.EngineScore{
			{Engine: types.Unknown},
			{Engine: "Unity", Score: 1, Matched: 1},
			{Engine: "Godot", Score: 7, Matched: 2},
		},
	}
}

func TestPrintText_Identified(t *testing.T) {
	var buf bytes.Buffer
	PrintText(&buf, godotReport(), PrintOptions{NoColor: true})
	out := buf.String()
	for _, want := range []string{"Engine: Godot", "Confidence: 1 (high)", "Matches (2):", "  project.godot"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output; got: %q", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no escape codes with NoColor; got: %q", out)
	}
	if strings.Contains(out, "SCORE") {
		t.Fatalf("scores table should only appear with Explain; got: %q", out)
	}
}

func TestPrintText_ColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	PrintText(&buf, godotReport(), PrintOptions{})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected colored engine name; got: %q", buf.String())
	}
}

func TestPrintText_Unknown_ShowsFooter(t *testing.T) {
	var buf bytes.Buffer
	rep := classify.Report{Result: types.DetectionResult{Engine: types.Unknown, Matches: []string{}}}
	PrintText(&buf, rep, PrintOptions{NoColor: true, Duration: 1200 * time.Millisecond, FilesListed: 10, Cached: true})
	out := buf.String()
	if !strings.Contains(out, "No game engine identified") {
		t.Fatalf("expected unknown message; got: %q", out)
	}
	if !strings.Contains(out, "Files listed: 10") || !strings.Contains(out, "Scan duration: 1.20s") {
		t.Fatalf("expected footer; got: %q", out)
	}
	if !strings.Contains(out, "from cache") {
		t.Fatalf("expected cache note; got: %q", out)
	}
}

func TestPrintText_Explain(t *testing.T) {
	var buf bytes.Buffer
	PrintText(&buf, godotReport(), PrintOptions{NoColor: true, Explain: true})
	out := buf.String()
	if !strings.Contains(out, "SCORE") || !strings.Contains(out, "Unity") {
		t.Fatalf("expected score table; got: %q", out)
	}
}

func TestPrintEngines(t *testing.T) {
	var buf bytes.Buffer
	PrintEngines(&buf, []types.EngineConfig{{
		Name: "Godot",
		Signatures: []signature.Signature{
			{Kind: signature.Filename("project.godot"), Weight: 5},
			{Kind: signature.Extension("pck"), Weight: 2.5},
		},
	}})
	out := buf.String()
	if !strings.Contains(out, "Godot") || !strings.Contains(out, "7.5") {
		t.Fatalf("expected engine row with max score; got: %q", out)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, godotReport(), false); err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["engine"] != "Godot" || got["confidence"] != 1.0 {
		t.Fatalf("unexpected document: %v", got)
	}
	if _, ok := got["scores"]; ok {
		t.Fatalf("scores must be omitted without explain: %v", got)
	}

	buf.Reset()
	rep := classify.Report{Result: types.DetectionResult{Engine: types.Unknown}}
	if err := WriteJSON(&buf, rep, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"matches": []`) {
		t.Fatalf("matches must encode as an empty array; got: %s", buf.String())
	}
}

func TestConfidenceLabel(t *testing.T) {
	cases := map[float64]string{1.0: "high", 0.8: "medium", 0.5: "low", 0: "none"}
	for c, want := range cases {
		if got := ConfidenceLabel(c); got != want {
			t.Fatalf("ConfidenceLabel(%v) = %q, want %q", c, got, want)
		}
	}
}

func TestShouldFail(t *testing.T) {
	res := types.DetectionResult{Engine: "Godot", Confidence: 0.8}
	if fail, _ := ShouldFail(res, 0, ""); fail {
		t.Fatal("disabled gate must pass")
	}
	if fail, _ := ShouldFail(res, 0.8, "godot"); fail {
		t.Fatal("expect is case-insensitive and threshold is inclusive")
	}
	if fail, reason := ShouldFail(res, 1.0, ""); !fail || !strings.Contains(reason, "below 1") {
		t.Fatalf("expected confidence failure, got %v %q", fail, reason)
	}
	if fail, reason := ShouldFail(res, 0, "Unity"); !fail || !strings.Contains(reason, `"Unity"`) {
		t.Fatalf("expected engine mismatch, got %v %q", fail, reason)
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, godotReport(), PrintOptions{NoColor: true, Explain: true, FilesListed: 4, Target: "build/"})
	out := buf.String()
	for _, want := range []string{"Target: build/", "ENGINE", "CONFIDENCE", "Godot", "high", "MATCHED FILE", "project.godot", "SCORE", "Unity", "Files listed: 4"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table output; got: %q", want, out)
		}
	}
}

func TestPrintTable_Unknown(t *testing.T) {
	var buf bytes.Buffer
	rep := classify.Report{Result: types.DetectionResult{Engine: types.Unknown, Matches: []string{}}}
	PrintTable(&buf, rep, PrintOptions{NoColor: true})
	out := buf.String()
	if !strings.Contains(out, "Unknown") || !strings.Contains(out, "none") {
		t.Fatalf("expected unknown row; got: %q", out)
	}
	if strings.Contains(out, "MATCHED FILE") {
		t.Fatalf("no file table without matches; got: %q", out)
	}
}
