package sds011dash

import "fmt"

// Result is register pair from data reply
type Result struct {
	SmallReg uint16
	LargeReg uint16
}

func (p *Result) Small() float64 {
	return float64(p.SmallReg) / 10
}
func (p *Result) Large() float64 {
	return float64(p.LargeReg) / 10
}

// Value picks reading of channel
func (p *Result) Value(ch Channel) float64 {
	if ch == PM10 {
		return p.Large()
	}
	return p.Small()
}

// NOTICE: non calibrated values, used for debug
func (p *Result) ToString() string {
	return fmt.Sprintf("PM2.5= %.1fµg/m³ PM10= %.1fµg/m³", p.Small(), p.Large())
}
