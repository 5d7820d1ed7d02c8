package gen

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/ojrac/opensimplex-go"
)

// Basis is a smooth 2D noise function. Implementations return values in
// [0, 1] and must be safe for concurrent use.
type Basis interface {
	Eval2(x, z float64) float64
}

// Basis names accepted by NewBasis.
const (
	BasisOpenSimplex = "opensimplex"
	BasisSimplex     = "simplex"
	BasisFlat        = "flat"
)

// NewBasis returns the named basis seeded with seed. An empty name selects
// OpenSimplex.
func NewBasis(name string, seed int64) (Basis, error) {
	switch strings.ToLower(name) {
	case "", BasisOpenSimplex:
		return NewOpenSimplexBasis(seed), nil
	case BasisSimplex:
		return NewSimplexBasis(seed), nil
	case BasisFlat:
		return FlatBasis{Level: 0.5}, nil
	default:
		return nil, fmt.Errorf("unknown noise basis %q", name)
	}
}

// OpenSimplexBasis adapts opensimplex-go's normalized generator.
type OpenSimplexBasis struct {
	n opensimplex.Noise
}

// NewOpenSimplexBasis creates an OpenSimplex basis from a seed.
func NewOpenSimplexBasis(seed int64) *OpenSimplexBasis {
	return &OpenSimplexBasis{n: opensimplex.NewNormalized(seed)}
}

func (b *OpenSimplexBasis) Eval2(x, z float64) float64 {
	return clamp01(b.n.Eval2(x, z))
}

// FlatBasis returns the same level everywhere, producing superflat terrain.
type FlatBasis struct {
	Level float64
}

func (b FlatBasis) Eval2(_, _ float64) float64 { return clamp01(b.Level) }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// simplexGrads are eight unit gradients spaced 45 degrees apart.
var simplexGrads = func() (g [8][2]float64) {
	for i := range g {
		a := float64(i) * math.Pi / 4
		g[i] = [2]float64{math.Cos(a), math.Sin(a)}
	}
	return g
}()

const (
	simplexSkew   = 0.36602540378443864676 // (sqrt(3) - 1) / 2
	simplexUnskew = 0.21132486540518711775 // (3 - sqrt(3)) / 6
	// simplexScale maps the peak corner sum for unit gradients onto 1.
	simplexScale = 99.2
	// simplexStream is the PCG stream shared by every seed.
	simplexStream = 0x9e3779b97f4a7c15
)

// SimplexBasis is 2D simplex noise. A sample sums the gradient
// contributions of the three corners of the skewed triangle containing it,
// each weighted by a radial falloff.
type SimplexBasis struct {
	perm [512]uint8
}

// NewSimplexBasis shuffles a permutation table from seed.
func NewSimplexBasis(seed int64) *SimplexBasis {
	rng := rand.New(rand.NewPCG(uint64(seed), simplexStream))
	b := &SimplexBasis{}
	for i, v := range rng.Perm(256) {
		b.perm[i] = uint8(v)
		b.perm[i+256] = uint8(v)
	}
	return b
}

func (b *SimplexBasis) Eval2(x, z float64) float64 {
	return clamp01(0.5 + 0.5*b.sample(x, z))
}

// sample returns simplex noise at (x, z) in roughly [-1, 1].
func (b *SimplexBasis) sample(x, z float64) float64 {
	s := (x + z) * simplexSkew
	cx, cz := math.Floor(x+s), math.Floor(z+s)
	u := (cx + cz) * simplexUnskew
	dx, dz := x-cx+u, z-cz+u

	mid := [2]int{0, 1}
	if dx > dz {
		mid = [2]int{1, 0}
	}
	ix, iz := int(cx)&255, int(cz)&255

	var sum float64
	for _, c := range [3][2]int{{0, 0}, mid, {1, 1}} {
		shift := float64(c[0]+c[1]) * simplexUnskew
		ox := dx - float64(c[0]) + shift
		oz := dz - float64(c[1]) + shift
		w := 0.5 - ox*ox - oz*oz
		if w <= 0 {
			continue
		}
		g := simplexGrads[b.perm[ix+c[0]+int(b.perm[iz+c[1]])]&7]
		w *= w
		sum += w * w * (g[0]*ox + g[1]*oz)
	}
	return sum * simplexScale
}
