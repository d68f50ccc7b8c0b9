package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/heliograph/heliograph/pkg/ephemeris"
	"github.com/heliograph/heliograph/pkg/observer"
)

func main() {
	var (
		lat     = flag.Float64("lat", 0, "Observer latitude in degrees (north positive)")
		lon     = flag.Float64("lon", 0, "Observer longitude in degrees (east positive)")
		tz      = flag.String("tz", "UTC", "IANA time zone name, e.g. Europe/London")
		dateStr = flag.String("date", "", "Local calendar date (YYYY-MM-DD), default today")
		height  = flag.Float64("height", 0, "Observer height above ground in meters")
	)
	flag.Parse()

	o, err := observer.New(*lat, *lon, *tz, observer.HorizonModel{AboveGround: *height})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var date time.Time
	if *dateStr == "" {
		date = time.Now().In(o.Location())
	} else {
		date, err = time.ParseInLocation("2006-01-02", *dateStr, o.Location())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			os.Exit(1)
		}
	}

	eph, err := ephemeris.Compute(o, date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Solar events for %s (%.4f, %.4f)\n", eph.Date.Format("2006-01-02"), *lat, *lon)
	order := []ephemeris.EventKind{
		ephemeris.SolarMidnight,
		ephemeris.AstronomicalDawn,
		ephemeris.NauticalDawn,
		ephemeris.Dawn,
		ephemeris.Sunrise,
		ephemeris.SolarNoon,
		ephemeris.Sunset,
		ephemeris.Dusk,
		ephemeris.NauticalDusk,
		ephemeris.AstronomicalDusk,
	}
	for _, kind := range order {
		ev := eph.Events[kind]
		if ev.Occurs() {
			fmt.Printf("  %-18s %s\n", kind, ev.Instant.In(o.Location()).Format("15:04:05 MST"))
		} else {
			fmt.Printf("  %-18s does not occur\n", kind)
		}
	}
	fmt.Printf("  noon elevation     %+.2f°\n", eph.NoonElevation)
	fmt.Printf("  midnight elevation %+.2f°\n", eph.MidnightElevation)
	if daylight, ok := eph.Daylight(); ok {
		fmt.Printf("  daylight           %s\n", daylight.Round(time.Second))
	}
}
