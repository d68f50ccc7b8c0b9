// Package solarpos computes the sun's geometric topocentric position using
// the NOAA low-precision solar ephemeris. Results carry no refraction
// correction; callers fold refraction and horizon dip into the elevation
// thresholds they test against. Accuracy is better than one arc minute for
// dates between 1901 and 2099; outside that range the truncated series
// drift and no accuracy is claimed.
package solarpos

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Position is the sun's geometric position for an observer at a given
// instant.
type Position struct {
	ElevationDeg   float64 // degrees above the geometric horizon, negative below
	AzimuthDeg     float64 // degrees clockwise from true north
	DeclinationDeg float64
	EqOfTimeMin    float64
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }
func fixAngle(a float64) float64   { return a - 360.0*math.Floor(a/360.0) }

// clamp1 keeps trig arguments inside acos/asin domain; rounding can push
// them a hair past ±1 near the poles and the zenith.
func clamp1(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// At returns the sun's position for an observer at latitude lat, longitude
// lon (degrees, east positive) at instant t. The computation is pure; t's
// zone only matters insofar as it identifies an absolute instant.
func At(lat, lon float64, t time.Time) Position {
	utc := t.UTC()
	jd := julian.TimeToJD(utc)
	T := (jd - 2451545.0) / 36525.0

	// Geometric mean longitude and anomaly, eccentricity, equation of
	// center, apparent longitude, obliquity. Meeus ch. 25 truncated series.
	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032))
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)
	C := math.Sin(degToRad(M))*(1.914602-T*(0.004817+T*0.000014)) +
		math.Sin(degToRad(2*M))*(0.019993-T*0.000101) +
		math.Sin(degToRad(3*M))*0.000289
	sunLong := L0 + C
	omega := 125.04 - 1934.136*T
	lambda := sunLong - 0.00569 - 0.00478*math.Sin(degToRad(omega))
	eps0 := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60
	eps := eps0 + 0.00256*math.Cos(degToRad(omega))
	declRad := math.Asin(clamp1(math.Sin(degToRad(eps)) * math.Sin(degToRad(lambda))))

	y := math.Tan(degToRad(eps)/2) * math.Tan(degToRad(eps)/2)
	eqTimeMin := radToDeg(y*math.Sin(degToRad(2*L0))-
		2*e*math.Sin(degToRad(M))+
		4*e*y*math.Sin(degToRad(M))*math.Cos(degToRad(2*L0))-
		0.5*y*y*math.Sin(degToRad(4*L0))-
		1.25*e*e*math.Sin(degToRad(2*M))) * 4

	// True solar time from UTC clock time, longitude, and equation of time.
	utcMin := float64(utc.Hour()*60+utc.Minute()) + float64(utc.Second())/60.0 +
		float64(utc.Nanosecond())/6e10
	tst := math.Mod(utcMin+4*lon+eqTimeMin+1440, 1440)
	ha := tst/4 - 180
	haRad := degToRad(ha)

	latRad := degToRad(lat)
	cosZen := clamp1(math.Sin(latRad)*math.Sin(declRad) +
		math.Cos(latRad)*math.Cos(declRad)*math.Cos(haRad))
	zenRad := math.Acos(cosZen)

	azDeg := 180.0 // straight south fallback when zenith distance vanishes
	if azDen := math.Cos(latRad) * math.Sin(zenRad); math.Abs(azDen) > 1e-12 {
		azNum := math.Sin(declRad) - math.Sin(latRad)*cosZen
		azDeg = radToDeg(math.Acos(clamp1(azNum / azDen)))
		if ha > 0 {
			azDeg = 360 - azDeg
		}
	}

	return Position{
		ElevationDeg:   90 - radToDeg(zenRad),
		AzimuthDeg:     azDeg,
		DeclinationDeg: radToDeg(declRad),
		EqOfTimeMin:    eqTimeMin,
	}
}

// Elevation returns only the geometric elevation, degrees.
func Elevation(lat, lon float64, t time.Time) float64 {
	return At(lat, lon, t).ElevationDeg
}
