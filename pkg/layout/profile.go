package layout

import "math"

// Profile names.
const (
	ProfileDense    = "dense"
	ProfileModerate = "moderate"
	ProfileSparse   = "sparse"

	DefaultProfile = ProfileModerate
)

// Profile configures the forces of the layout.
type Profile struct {
	Name string `json:"name" toml:"name"`

	// LinkDistance is the rest length of edges. LinkStrength 0 selects the
	// degree-based default.
	LinkDistance float64 `json:"link_distance" toml:"link_distance"`
	LinkStrength float64 `json:"link_strength" toml:"link_strength"`

	// Charge is the many-body strength; negative repels. Repulsion is
	// clamped to [ChargeDistanceMin, ChargeDistanceMax].
	Charge            float64 `json:"charge" toml:"charge"`
	ChargeDistanceMin float64 `json:"charge_distance_min" toml:"charge_distance_min"`
	ChargeDistanceMax float64 `json:"charge_distance_max" toml:"charge_distance_max"`

	CollideRadius float64 `json:"collide_radius" toml:"collide_radius"`

	// CenterStrength is the pull toward the viewport center on each axis.
	CenterStrength float64 `json:"center_strength" toml:"center_strength"`
}

var profiles = map[string]Profile{
	ProfileDense: {
		Name:              ProfileDense,
		LinkDistance:      20,
		Charge:            -15,
		ChargeDistanceMin: 1,
		ChargeDistanceMax: 200,
		CollideRadius:     4,
		CenterStrength:    0.1,
	},
	ProfileModerate: {
		Name:              ProfileModerate,
		LinkDistance:      40,
		Charge:            -30,
		ChargeDistanceMin: 1,
		ChargeDistanceMax: 400,
		CollideRadius:     6,
		CenterStrength:    0.05,
	},
	ProfileSparse: {
		Name:              ProfileSparse,
		LinkDistance:      80,
		Charge:            -60,
		ChargeDistanceMin: 1,
		ChargeDistanceMax: 800,
		CollideRadius:     8,
		CenterStrength:    0.02,
	},
}

// Lookup returns the named profile.
func Lookup(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// LookupOrDefault returns the named profile, or the default profile if the
// name is unknown.
func LookupOrDefault(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	return profiles[DefaultProfile]
}

// Names returns the profile names in order of increasing spread.
func Names() []string {
	return []string{ProfileDense, ProfileModerate, ProfileSparse}
}

func (p Profile) distanceMax() float64 {
	if p.ChargeDistanceMax <= 0 {
		return math.Inf(1)
	}
	return p.ChargeDistanceMax
}
