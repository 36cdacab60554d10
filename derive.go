package fitapp

import (
	"fmt"
	"time"
)

// Variant selects the derivation applied to an activity.
type Variant string

const (
	VariantRunning       Variant = "running"
	VariantIndoorCycling Variant = "indoor_cycling"
	VariantDefault       Variant = "default"
)

// Card labels.
const (
	LabelDistance    = "Distance (km)"
	LabelDuration    = "Duration"
	LabelAvgPace     = "Avg Pace (min/km)"
	LabelAvgSpeed    = "Avg Speed (km/h)"
	LabelAvgCadence  = "Avg Cadence"
	LabelAvgPower    = "Avg Power (W)"
	LabelCalories    = "Calories (kcal)"
	LabelAvgTemp     = "Avg Temperature (°C)"
	LabelTotalAscent = "Total Ascent (m)"
	LabelTotalDesc   = "Total Descent (m)"
)

// Channel names.
const (
	ChannelPace          = "pace"
	ChannelAltitude      = "altitude"
	ChannelEnhancedSpeed = "enhanced_speed"
	ChannelSpeed         = "speed"
	ChannelPower         = "power"
	ChannelCadence       = "cadence"
)

const mpsToKmh = 3.6

type variantSpec struct {
	derive    func(Activity, []time.Time) Derivation
	required  bool
	needsPath bool
}

var variants = map[Variant]variantSpec{
	VariantRunning:       {derive: deriveRunning, required: true, needsPath: true},
	VariantIndoorCycling: {derive: deriveIndoorCycling, required: true},
	VariantDefault:       {derive: deriveDefault},
}

// ResolveVariant maps a sport/sub-sport pair to its variant.
func ResolveVariant(sport, subSport string) Variant {
	switch {
	case sport == "running":
		return VariantRunning
	case sport == "cycling" && subSport == "indoor_cycling":
		return VariantIndoorCycling
	default:
		return VariantDefault
	}
}

// Derive computes the summary card and derived series for one activity.
// Every timestamp of the result is expressed in loc.
func Derive(act Activity, loc *time.Location) (Derivation, error) {
	if loc == nil {
		loc = time.UTC
	}
	v := ResolveVariant(act.Sport, act.SubSport)
	spec := variants[v]
	if spec.required {
		if err := requireSessionFields(act); err != nil {
			return Derivation{}, err
		}
	}
	var stamps []time.Time
	if v != VariantDefault {
		stamps = make([]time.Time, len(act.Records))
		for i, r := range act.Records {
			stamps[i] = r.TimestampUTC.In(loc)
		}
	}
	d := spec.derive(act, stamps)
	d.Variant = v
	d.NeedsPath = spec.needsPath
	return d, nil
}

func requireSessionFields(act Activity) error {
	if !isFinite(act.TotalDistanceM) {
		return fieldError(ErrValidation, "session_mesgs[0].total_distance", "", fmt.Errorf("required for %s", act.Sport))
	}
	if !isFinite(act.TotalElapsedS) {
		return fieldError(ErrValidation, "session_mesgs[0].total_elapsed_time", "", fmt.Errorf("required for %s", act.Sport))
	}
	return nil
}

// SpeedToPace converts m/s to min/km. Zero, negative or missing speed has no pace.
func SpeedToPace(mps float64) float64 {
	if !isFinite(mps) || mps <= 0 {
		return Unavailable()
	}
	return 1000.0 / mps / 60.0
}

// SamplePace is SpeedToPace with the display clamp: no pace plots as 0.
func SamplePace(mps float64) float64 {
	p := SpeedToPace(mps)
	if !isFinite(p) {
		return 0
	}
	return p
}

// SpeedToKmh converts m/s to km/h.
func SpeedToKmh(mps float64) float64 {
	return mps * mpsToKmh
}

func deriveRunning(act Activity, stamps []time.Time) Derivation {
	var b cardBuilder
	b.add(LabelDistance, MetersToKilometers(act.TotalDistanceM), fixed2)
	b.add(LabelDuration, act.TotalElapsedS, FormatDuration)
	b.add(LabelAvgPace, SpeedToPace(act.AvgSpeedMPS), fixed2)
	b.add(LabelAvgCadence, act.AvgCadence, wholeNumber)
	b.add(LabelCalories, act.TotalCalories, wholeNumber)
	b.add(LabelAvgTemp, act.AvgTemperatureC, fixed1)
	b.add(LabelTotalAscent, act.TotalAscentM, wholeNumber)
	b.add(LabelTotalDesc, act.TotalDescentM, wholeNumber)

	pace := make([]float64, len(act.Records))
	altitude := make([]float64, len(act.Records))
	for i, r := range act.Records {
		pace[i] = SamplePace(r.SpeedMPS)
		altitude[i] = r.AltitudeM
	}
	return Derivation{
		Card:       b.card(),
		Timestamps: stamps,
		Series: []Series{
			{Name: ChannelPace, Unit: "min/km", Values: pace},
			{Name: ChannelAltitude, Unit: "m", Values: altitude},
		},
	}
}

func deriveIndoorCycling(act Activity, stamps []time.Time) Derivation {
	n := len(act.Records)
	enhanced := make([]float64, n)
	raw := make([]float64, n)
	power := make([]float64, n)
	cadence := make([]float64, n)
	for i, r := range act.Records {
		enhanced[i] = r.SpeedMPS
		raw[i] = r.RawSpeedMPS
		power[i] = r.PowerW
		cadence[i] = r.Cadence
	}
	enhanced = zeroFilled(enhanced)
	raw = zeroFilled(raw)
	power = zeroFilled(power)
	cadence = zeroFilled(cadence)
	for i := range enhanced {
		enhanced[i] = SpeedToKmh(enhanced[i])
		raw[i] = SpeedToKmh(raw[i])
	}

	var b cardBuilder
	b.add(LabelDistance, MetersToKilometers(act.TotalDistanceM), fixed2)
	b.add(LabelDuration, act.TotalElapsedS, FormatDuration)
	b.add(LabelAvgSpeed, mean(enhanced), fixed2)
	b.add(LabelAvgCadence, mean(cadence), wholeNumber)
	b.add(LabelAvgPower, mean(power), wholeNumber)
	b.add(LabelCalories, act.TotalCalories, wholeNumber)

	return Derivation{
		Card:       b.card(),
		Timestamps: stamps,
		Series: []Series{
			{Name: ChannelEnhancedSpeed, Unit: "km/h", Values: enhanced},
			{Name: ChannelSpeed, Unit: "km/h", Values: raw},
			{Name: ChannelPower, Unit: "W", Values: power},
			{Name: ChannelCadence, Unit: "rpm", Values: cadence},
		},
	}
}

func deriveDefault(Activity, []time.Time) Derivation {
	return Derivation{Card: SummaryCard{}}
}
