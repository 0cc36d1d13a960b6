package sds011dash

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestBandsAreContiguous(t *testing.T) {
	for _, ch := range Channels {
		table, err := TableFor(ch)
		if err != nil {
			t.Fatalf("table for %v: %v", ch, err)
		}
		bands := table.Bands()
		if len(bands) != 6 {
			t.Fatalf("PM%v has %v bands", ch, len(bands))
		}
		if bands[0].Lower != 0 {
			t.Errorf("PM%v first lower is %v", ch, bands[0].Lower)
		}
		for i, b := range bands {
			if b.Channel != ch {
				t.Errorf("band %v has channel %v, want %v", b.Label, b.Channel, ch)
			}
			if i+1 < len(bands) {
				if b.Upper != bands[i+1].Lower {
					t.Errorf("PM%v gap between %v and %v", ch, b.Label, bands[i+1].Label)
				}
			} else if b.Upper != Unbounded {
				t.Errorf("PM%v last band upper is %v", ch, b.Upper)
			}
		}
	}
}

func TestClassifyEveryReadingHasOneBand(t *testing.T) {
	for _, ch := range Channels {
		table, _ := TableFor(ch)
		for r := 0.0; r < 600; r += 0.1 {
			band, err := table.Classify(r)
			if err != nil {
				t.Fatalf("PM%v %v: %v", ch, r, err)
			}
			matches := 0
			for _, b := range table.Bands() {
				if b.Contains(r) {
					matches++
				}
			}
			if matches != 1 {
				t.Fatalf("PM%v %v matches %v bands", ch, r, matches)
			}
			if r < float64(band.Lower) || (band.Upper != Unbounded && float64(band.Upper) <= r) {
				t.Fatalf("PM%v %v classified into %#v", ch, r, band)
			}
		}
	}
}

func TestClassifyBoundaryGoesToUpperBand(t *testing.T) {
	for _, ch := range Channels {
		table, _ := TableFor(ch)
		for _, b := range table.Bands()[1:] {
			got, err := table.Classify(float64(b.Lower))
			if err != nil {
				t.Errorf("PM%v %v: %v", ch, b.Lower, err)
				continue
			}
			if got.Lower != b.Lower {
				t.Errorf("PM%v boundary %v went to %v, want %v", ch, b.Lower, got.Label, b.Label)
			}
		}
	}
}

func TestClassifyHighReadingIsHazardous(t *testing.T) {
	for _, ch := range Channels {
		table, _ := TableFor(ch)
		bands := table.Bands()
		for _, r := range []float64{float64(bands[len(bands)-1].Lower) + 1, 999.9, 6553.5} {
			band, err := table.Classify(r)
			if err != nil || band.Label != "Hazardous" {
				t.Errorf("PM%v %v got %v err=%v", ch, r, band.Label, err)
			}
		}
	}
}

func TestClassifyScenario(t *testing.T) {
	testCases := []struct {
		ch    Channel
		r     float64
		label string
		lower int
		upper int
	}{
		{PM25, 0, "Good", 0, 12},
		{PM25, 11.9, "Good", 0, 12},
		{PM25, 12, "Moderate", 12, 35},
		{PM25, 400, "Hazardous", 250, Unbounded},
		{PM10, 354, "Unhealthy", 255, 355},
		{PM10, 355, "Very Unhealthy", 355, 425},
		{PM10, 425, "Hazardous", 425, Unbounded},
		{PM10, 0, "Good", 0, 55},
	}
	classifier := NewClassifier(nil)
	for _, tc := range testCases {
		band, table, err := classifier.Classify(tc.ch, tc.r)
		if err != nil {
			t.Errorf("PM%v %v: %v", tc.ch, tc.r, err)
			continue
		}
		if band.Label != tc.label || band.Lower != tc.lower || band.Upper != tc.upper {
			t.Errorf("PM%v %v got %#v", tc.ch, tc.r, band)
		}
		if table.Channel() != tc.ch {
			t.Errorf("table channel %v want %v", table.Channel(), tc.ch)
		}
	}
}

func TestClassifyUnknownChannelIsLogged(t *testing.T) {
	var buf bytes.Buffer
	classifier := NewClassifier(slog.New(slog.NewTextHandler(&buf, nil)))

	_, _, err := classifier.Classify(Channel(3), 10)
	if !errors.Is(err, ErrUnknownChannel) {
		t.Fatalf("expected ErrUnknownChannel, got %v", err)
	}
	logged := buf.String()
	if !strings.Contains(logged, "level=ERROR") || !strings.Contains(logged, "pm must be 2.5 or 10") {
		t.Errorf("error not logged: %q", logged)
	}
}

func TestClassifyNegativeReading(t *testing.T) {
	var buf bytes.Buffer
	classifier := NewClassifier(slog.New(slog.NewTextHandler(&buf, nil)))
	_, _, err := classifier.Classify(PM25, -0.1)
	if !errors.Is(err, ErrNegativeReading) {
		t.Errorf("expected ErrNegativeReading, got %v", err)
	}
	if !strings.Contains(buf.String(), "stage=classify") {
		t.Errorf("negative reading not logged: %q", buf.String())
	}
}

func TestBuildRangeTableUnknownChannel(t *testing.T) {
	if _, err := BuildRangeTable(Channel(-1)); !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("expected ErrUnknownChannel, got %v", err)
	}
	if _, err := TableFor(Channel(2)); !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("expected ErrUnknownChannel, got %v", err)
	}
}

func TestParseChannel(t *testing.T) {
	good := map[string]Channel{"2.5": PM25, "pm2.5": PM25, "PM2.5": PM25, "10": PM10, "pm10": PM10, "10.0": PM10}
	for s, want := range good {
		got, err := ParseChannel(s)
		if err != nil || got != want {
			t.Errorf("ParseChannel(%q) = %v, %v", s, got, err)
		}
	}
	for _, s := range []string{"3", "1", "", "pm", "2,5"} {
		if _, err := ParseChannel(s); !errors.Is(err, ErrUnknownChannel) {
			t.Errorf("ParseChannel(%q) expected ErrUnknownChannel, got %v", s, err)
		}
	}
}

func TestScaleAndColors(t *testing.T) {
	table, _ := TableFor(PM25)
	scale := table.Scale()
	want := []int{0, 12, 35, 55, 150, 250, 400}
	if len(scale) != len(want) {
		t.Fatalf("scale %v", scale)
	}
	for i := range want {
		if scale[i] != want[i] {
			t.Errorf("scale %v want %v", scale, want)
			break
		}
	}
	colors := table.Colors()
	if colors[0] != "#00E400" || colors[5] != "#660033" {
		t.Errorf("colors %v", colors)
	}

	pm10, _ := TableFor(PM10)
	if s := pm10.Scale(); s[len(s)-1] != 500 {
		t.Errorf("PM10 soft upper %v", s)
	}
}

func TestChannelValid(t *testing.T) {
	for _, ch := range Channels {
		if !ch.Valid() {
			t.Errorf("%v must be valid", ch)
		}
	}
	if Channel(2).Valid() || Channel(-1).Valid() {
		t.Errorf("out of range channel reported valid")
	}
}
