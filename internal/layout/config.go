package layout

import "github.com/lazypower/recognition/internal/graph"

// Config holds every tunable of the force simulation. A zero strength
// disables the corresponding force.
type Config struct {
	Charge         float64                // many-body strength, negative repels
	CenterStrength float64                // fraction of the centroid offset removed per step
	LinkDistance   float64                // rest length of every link
	LinkStrength   map[graph.Kind]float64 // spring strength per link kind

	CollideRadius   float64 // per-node radius; pairs closer than twice this are pushed apart
	CollideStrength float64

	OrbitStrength float64 // pull toward the orbital target position
	OrbitSpeed    float64 // base angular speed, scaled by alpha each step
	OrbitMin      float64
	OrbitMax      float64
	OrbitSeedMin  float64 // lower bound of the radius drawn for a new node
	SpiralFactor  float64 // multiplicative radius growth per step

	AlphaInitial  float64
	AlphaDecay    float64
	AlphaMin      float64
	VelocityDecay float64
	ReheatAlpha   float64

	Seed int64
}

// DefaultConfig returns the stock simulation parameters.
func DefaultConfig() Config {
	return Config{
		Charge:         -120,
		CenterStrength: 0.1,
		LinkDistance:   150,
		LinkStrength: map[graph.Kind]float64{
			graph.Resonance: 0.7,
			graph.Tension:   0.5,
			graph.Evolution: 0.3,
		},
		CollideRadius:   25,
		CollideStrength: 0.7,
		OrbitStrength:   0.1,
		OrbitSpeed:      0.01,
		OrbitMin:        50,
		OrbitMax:        250,
		OrbitSeedMin:    150,
		SpiralFactor:    1.001,
		AlphaInitial:    0.3,
		AlphaDecay:      0.01,
		AlphaMin:        0.001,
		VelocityDecay:   0.4,
		ReheatAlpha:     0.3,
		Seed:            1,
	}
}

func (c Config) linkStrength(k graph.Kind) float64 {
	if c.LinkStrength == nil {
		return 0
	}
	return c.LinkStrength[k]
}

func (c Config) clampOrbit(r float64) float64 {
	if r < c.OrbitMin {
		return c.OrbitMin
	}
	if r > c.OrbitMax {
		return c.OrbitMax
	}
	return r
}
