/*
Empirical and stolen equations for humidity compensation.
Pick your poison, or edit your own. Poller applies these only when humidity_percent is configured

I do not have laboratory equipment so can not prove that these work
*/

package sds011dash

import "math"

/*
Stolen from
https://github.com/piotrkpaul/esp8266-sds011
*/
func NormalizePM25(pm25 float64, humidity float64) float64 {
	return pm25 / (1.0 + 0.48756*math.Pow((humidity/100.0), 8.60068))
}

func NormalizePM10(pm10 float64, humidity float64) float64 {
	return pm10 / (1.0 + 0.81559*math.Pow((humidity/100.0), 5.83411))
}

// Compensate rounds back to one decimal, sensor resolution
func Compensate(ch Channel, reading float64, humidity float64) float64 {
	var v float64
	switch ch {
	case PM10:
		v = NormalizePM10(reading, humidity)
	default:
		v = NormalizePM25(reading, humidity)
	}
	return math.Round(v*10) / 10
}
