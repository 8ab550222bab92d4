package convert

import (
	"testing"

	"labnwb/internal/testsupport"
)

func TestSplitOnGaps(t *testing.T) {
	segments := splitOnGaps([]float64{0, 0.1, 0.2, 5, 5.1, 20}, 1.0)
	if len(segments) != 3 {
		t.Fatalf("segments = %v", segments)
	}
	if len(segments[0]) != 3 || len(segments[1]) != 2 || len(segments[2]) != 1 {
		t.Fatalf("segment lengths = %v", segments)
	}

	if got := splitOnGaps(nil, 1.0); got != nil {
		t.Fatalf("empty input produced %v", got)
	}
	if got := splitOnGaps([]float64{1, 2, 3}, 10); len(got) != 1 {
		t.Fatalf("gapless input split: %v", got)
	}
}

func TestClassifyByPatterns(t *testing.T) {
	doc := testsupport.NewMetadata()

	task, ok := classifyByPatterns(doc, "S01_F01_BOX_SLP")
	if !ok || task.Name != "sleep" {
		t.Fatalf("got %v, %v", task.Name, ok)
	}
	task, ok = classifyByPatterns(doc, "S02_F01_TRK_RUN")
	if !ok || task.Name != "run" {
		t.Fatalf("got %v, %v", task.Name, ok)
	}
	if _, ok := classifyByPatterns(doc, "S03_F01_MAZE_XYZ"); ok {
		t.Fatal("unexpected classification")
	}
}

func TestNTrodeFromChannelID(t *testing.T) {
	cases := map[string]string{
		"nt4ch1": "nTrode4",
		"NT12":   "nTrode12",
		"7":      "nTrode7",
		"":       "",
		"ntch":   "",
	}
	for in, want := range cases {
		if got := ntrodeFromChannelID(in); got != want {
			t.Fatalf("ntrodeFromChannelID(%q) = %q, want %q", in, got, want)
		}
	}
}
