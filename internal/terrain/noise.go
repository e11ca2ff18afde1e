package terrain

import "math"

// heightField samples coherent 2D noise in [-1, 1]. Implementations hold no
// mutable state, so one field may be sampled from any goroutine.
type heightField interface {
	sample(x, z float64) float64
}

// valueField is hashed value noise; the seed is mixed into every lattice hash.
type valueField struct {
	seed int64
}

func (f valueField) sample(x, z float64) float64 {
	return valueNoise(f.seed, x, z)
}

func valueNoise(seed int64, x, z float64) float64 {
	x0 := int(math.Floor(x))
	z0 := int(math.Floor(z))
	x1 := x0 + 1
	z1 := z0 + 1

	sx := smooth(x - float64(x0))
	sz := smooth(z - float64(z0))

	n0 := random2D(x0, z0, seed)
	n1 := random2D(x1, z0, seed)
	ix0 := lerp(n0, n1, sx)

	n2 := random2D(x0, z1, seed)
	n3 := random2D(x1, z1, seed)
	ix1 := lerp(n2, n3, sx)

	return lerp(ix0, ix1, sz)
}

func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func random2D(x, z int, seed int64) float64 {
	return float64(hash3(x, z, int(seed))&0xFFFF)/0x8000 - 1.0
}

func hash3(x, y, z int) uint32 {
	h := uint32(x*374761393 + y*668265263 + z*2147483647)
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

var grad2 = [12][2]float64{
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	{1, 0}, {-1, 0}, {1, 0}, {-1, 0},
	{0, 1}, {0, -1}, {0, 1}, {0, -1},
}

// simplexField is 2D simplex noise over a seeded permutation table. A new
// table is built for every generation call.
type simplexField struct {
	perm [512]int
}

func newSimplexField(seed int64) *simplexField {
	f := &simplexField{}

	var p [256]int
	for i := range p {
		p[i] = i
	}
	// Fisher-Yates shuffle driven by an LCG over the seed.
	s := seed
	for i := 255; i > 0; i-- {
		s = s*6364136223846793005 + 1442695040888963407
		j := int((s>>33)&0x7FFFFFFF) % (i + 1)
		p[i], p[j] = p[j], p[i]
	}
	for i := 0; i < 512; i++ {
		f.perm[i] = p[i&255]
	}
	return f
}

func (f *simplexField) sample(x, z float64) float64 {
	const (
		f2 = 0.36602540378443864676 // (sqrt(3) - 1) / 2
		g2 = 0.21132486540518711775 // (3 - sqrt(3)) / 6
	)

	s := (x + z) * f2
	i := fastFloor(x + s)
	j := fastFloor(z + s)

	t := float64(i+j) * g2
	x0 := x - (float64(i) - t)
	z0 := z - (float64(j) - t)

	var i1, j1 int
	if x0 > z0 {
		i1 = 1
	} else {
		j1 = 1
	}

	x1 := x0 - float64(i1) + g2
	z1 := z0 - float64(j1) + g2
	x2 := x0 - 1.0 + 2.0*g2
	z2 := z0 - 1.0 + 2.0*g2

	ii := i & 255
	jj := j & 255
	gi0 := f.perm[ii+f.perm[jj]] % 12
	gi1 := f.perm[ii+i1+f.perm[jj+j1]] % 12
	gi2 := f.perm[ii+1+f.perm[jj+1]] % 12

	n := corner(gi0, x0, z0) + corner(gi1, x1, z1) + corner(gi2, x2, z2)
	v := 70.0 * n
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

func corner(gi int, x, z float64) float64 {
	t := 0.5 - x*x - z*z
	if t < 0 {
		return 0
	}
	t *= t
	return t * t * (grad2[gi][0]*x + grad2[gi][1]*z)
}

func fastFloor(x float64) int {
	xi := int(x)
	if x < float64(xi) {
		return xi - 1
	}
	return xi
}

// fractalNoise sums octaves of field and normalises the result to [-1, 1].
func fractalNoise(field heightField, x, z, frequency float64, octaves int, persistence, lacunarity float64) float64 {
	amplitude := 1.0
	noiseSum := 0.0
	maxAmplitude := 0.0

	for i := 0; i < octaves; i++ {
		noiseSum += field.sample(x*frequency, z*frequency) * amplitude
		maxAmplitude += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}

	if maxAmplitude == 0 {
		return 0
	}
	return noiseSum / maxAmplitude
}

// deterministicRNG is a xorshift stream. Identical states yield identical
// sequences, independent of any other generator.
type deterministicRNG struct {
	state uint64
}

// newDeterministicRNG seeds a stream from a world column and the world seed.
func newDeterministicRNG(x, z int, seed int64) *deterministicRNG {
	state := uint64(hash3(x, z, int(seed)))<<32 ^ uint64(hash3(z, x, int(seed>>32)^0x5bd1e995))
	if state == 0 {
		state = 0x9e3779b97f4a7c15
	}
	return &deterministicRNG{state: state}
}

func (r *deterministicRNG) next() uint64 {
	r.state ^= r.state << 7
	r.state ^= r.state >> 9
	r.state ^= r.state << 8
	return r.state
}

// nextFloat returns a value in [0, 1).
func (r *deterministicRNG) nextFloat() float64 {
	return float64(r.next()>>11) / (1 << 53)
}
