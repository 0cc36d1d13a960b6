/*
Air quality scale

Colors taken from https://www.airnow.gov/themes/anblue/images/dial2/dial_legend.svg
Ranges are from AirNow AQI calculator, rounded to integers. Upper bound is exclusive,
so 12 is 'Moderate' for PM2.5, not 'Good'.
*/

package sds011dash

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
)

var (
	ErrUnknownChannel  = errors.New("pm must be 2.5 or 10")
	ErrNegativeReading = errors.New("reading must not be negative")
)

// Channel is particle size category
type Channel int

const (
	PM25 Channel = iota
	PM10
)

var Channels = []Channel{PM25, PM10}

func (c Channel) String() string {
	switch c {
	case PM25:
		return "2.5"
	case PM10:
		return "10"
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

func (c Channel) Valid() bool {
	return c == PM25 || c == PM10
}

// FrameOffset is index of channel register in sensor frame
func (c Channel) FrameOffset() int {
	if c == PM10 {
		return 4
	}
	return 2
}

// ParseChannel accepts "2.5", "pm2.5", "10" or "pm10"
func ParseChannel(s string) (Channel, error) {
	if len(s) > 2 && (s[:2] == "pm" || s[:2] == "PM") {
		s = s[2:]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, s)
	}
	switch f {
	case 2.5:
		return PM25, nil
	case 10:
		return PM10, nil
	}
	return 0, fmt.Errorf("%w: %v", ErrUnknownChannel, f)
}

// Unbounded is Upper of the last band
const Unbounded = -1

type Band struct {
	Label   string
	Channel Channel
	Color   string
	Lower   int //inclusive
	Upper   int //exclusive, or Unbounded
}

func (b Band) Contains(reading float64) bool {
	if b.Upper == Unbounded {
		return float64(b.Lower) <= reading
	}
	return float64(b.Lower) <= reading && reading < float64(b.Upper)
}

type labelColor struct {
	label string
	color string
}

var labelsColors = []labelColor{
	{"Good", "#00E400"},
	{"Moderate", "#FFFF00"},
	{"Unhealthy for sensitive groups", "#FF6600"},
	{"Unhealthy", "#FF0000"},
	{"Very Unhealthy", "#8F3F97"},
	{"Hazardous", "#660033"},
}

type scaleDef struct {
	breakpoints []int
	softUpper   int //readings can exceed, gauge can not
}

var scaleDefs = map[Channel]scaleDef{
	PM25: {breakpoints: []int{0, 12, 35, 55, 150, 250}, softUpper: 400},
	PM10: {breakpoints: []int{0, 55, 155, 255, 355, 425}, softUpper: 500},
}

// RangeTable is immutable after build
type RangeTable struct {
	channel   Channel
	bands     []Band
	softUpper int
}

func BuildRangeTable(ch Channel) (*RangeTable, error) {
	def, ok := scaleDefs[ch]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownChannel, ch)
	}
	if len(def.breakpoints) != len(labelsColors) {
		return nil, fmt.Errorf("channel %v has %v breakpoints for %v labels", ch, len(def.breakpoints), len(labelsColors))
	}

	bands := make([]Band, len(def.breakpoints))
	for i, lower := range def.breakpoints {
		upper := Unbounded
		if i+1 < len(def.breakpoints) {
			upper = def.breakpoints[i+1]
		}
		bands[i] = Band{
			Label:   labelsColors[i].label,
			Channel: ch,
			Color:   labelsColors[i].color,
			Lower:   lower,
			Upper:   upper,
		}
	}
	return &RangeTable{channel: ch, bands: bands, softUpper: def.softUpper}, nil
}

func mustBuild(ch Channel) *RangeTable {
	t, err := BuildRangeTable(ch)
	if err != nil {
		panic(err)
	}
	return t
}

var tables = map[Channel]*RangeTable{
	PM25: mustBuild(PM25),
	PM10: mustBuild(PM10),
}

func TableFor(ch Channel) (*RangeTable, error) {
	if !ch.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownChannel, ch)
	}
	return tables[ch], nil
}

func (t *RangeTable) Channel() Channel {
	return t.channel
}

// Bands returns copy
func (t *RangeTable) Bands() []Band {
	return append([]Band(nil), t.bands...)
}

func (t *RangeTable) SoftUpper() int {
	return t.softUpper
}

// Scale is all band boundaries plus soft upper. For full scale gauge
func (t *RangeTable) Scale() []int {
	result := make([]int, 0, len(t.bands)+1)
	for _, b := range t.bands {
		result = append(result, b.Lower)
	}
	return append(result, t.softUpper)
}

func (t *RangeTable) Colors() []string {
	result := make([]string, len(t.bands))
	for i, b := range t.bands {
		result[i] = b.Color
	}
	return result
}

// Classify does linear scan, first match wins. There are only 6 bands
func (t *RangeTable) Classify(reading float64) (Band, error) {
	if reading < 0 || math.IsNaN(reading) {
		return Band{}, fmt.Errorf("%w: %v", ErrNegativeReading, reading)
	}
	for _, b := range t.bands {
		if b.Contains(reading) {
			return b, nil
		}
	}
	//Not possible while first lower is 0 and last is unbounded
	return Band{}, fmt.Errorf("reading %v not in any PM%v band", reading, t.channel)
}

// Classifier logs what goes wrong, caller gets error too
type Classifier struct {
	logger *slog.Logger
}

func NewClassifier(logger *slog.Logger) *Classifier {
	return &Classifier{logger: orDiscard(logger)}
}

func (c *Classifier) Classify(ch Channel, reading float64) (Band, *RangeTable, error) {
	table, errTable := TableFor(ch)
	if errTable != nil {
		c.logger.Error("classification failed", "channel", ch.String(), "stage", "table", "error", errTable)
		return Band{}, nil, errTable
	}
	band, errBand := table.Classify(reading)
	if errBand != nil {
		c.logger.Error("classification failed", "channel", ch.String(), "stage", "classify", "reading", reading, "error", errBand)
		return Band{}, table, errBand
	}
	return band, table, nil
}
