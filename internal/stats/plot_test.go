package stats

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Test Plot", []Series{
		{Name: "A", Unit: "ms", Values: []float64{1, 2, 3, 2, 1}},
		{Name: "B", Unit: "%", Values: []float64{1, 1, 2, 3, 4}},
	}, 5, 4, false)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Plot") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "A: min=1.0ms max=3.0ms") {
		t.Fatalf("expected range line in output:\n%s", out)
	}
	if !strings.Contains(out, "Legend:") {
		t.Fatalf("expected legend in output")
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes in output")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	expectedMin := 1 + 2 + 4 + 1
	if len(lines) < expectedMin {
		t.Fatalf("expected at least %d lines of output, got %d", expectedMin, len(lines))
	}
}

func TestPlotSeriesSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "Empty", []Series{{Name: "A"}}, 20, 4, false); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPlotSeriesFlatValues(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "", []Series{{Name: "A", Values: []float64{5, 5, 5}}}, 12, 3, false); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if !strings.Contains(buf.String(), "A: min=5.0 max=5.0") {
		t.Fatalf("expected flat range, got:\n%s", buf.String())
	}
}

func TestPlotSeriesRangeUsesRawValues(t *testing.T) {
	var buf bytes.Buffer
	series := []Series{{Name: "Reaction", Unit: "ms", Values: []float64{300, 500, 250, 410, 320}}}
	if err := PlotSeries(&buf, "", series, 10, 4, false); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Reaction: min=250.0ms max=500.0ms") {
		t.Fatalf("expected raw min/max, got:\n%s", buf.String())
	}
}

func TestResample(t *testing.T) {
	got := resample([]float64{0, 10}, 3)
	want := []float64{0, 5, 10}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("resample[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	got = resample([]float64{1, 3, 5, 7}, 2)
	if got[0] != 2 || got[1] != 6 {
		t.Fatalf("unexpected downsample: %v", got)
	}
}
