// Package sunphase maps a solar elevation to a discrete sun phase and its
// boolean attributes. The mapping is stateless; classify fresh on every
// recomputation rather than tracking transitions.
package sunphase

// Phase is a discrete band of solar elevation.
type Phase string

const (
	Night                Phase = "night"
	AstronomicalTwilight Phase = "astronomical_twilight"
	NauticalTwilight     Phase = "nautical_twilight"
	CivilTwilight        Phase = "civil_twilight"
	Day                  Phase = "day"
)

// Attributes are independent boolean bands evaluated alongside the phase.
// Rising is passed through from the elevation trend, never derived from
// the phase itself.
type Attributes struct {
	BlueHour   bool `json:"blue_hour"`
	GoldenHour bool `json:"golden_hour"`
	Rising     bool `json:"rising"`
}

// Classification is the result of classifying one elevation sample.
type Classification struct {
	Phase      Phase      `json:"phase"`
	Attributes Attributes `json:"attributes"`
}

// Classify maps an elevation in degrees and the current elevation trend to
// a phase. Band edges, most restrictive first: below -18 night, -18..-12
// astronomical twilight, -12..-6 nautical twilight, -6..-0.833 civil
// twilight, -0.833 and above day. Blue hour spans -6..-4, golden hour
// -4..6; each band includes its lower edge.
func Classify(elevationDeg float64, rising bool) Classification {
	var phase Phase
	switch {
	case elevationDeg < -18:
		phase = Night
	case elevationDeg < -12:
		phase = AstronomicalTwilight
	case elevationDeg < -6:
		phase = NauticalTwilight
	case elevationDeg < -0.833:
		phase = CivilTwilight
	default:
		phase = Day
	}

	return Classification{
		Phase: phase,
		Attributes: Attributes{
			BlueHour:   elevationDeg >= -6 && elevationDeg < -4,
			GoldenHour: elevationDeg >= -4 && elevationDeg < 6,
			Rising:     rising,
		},
	}
}
