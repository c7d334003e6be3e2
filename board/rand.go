package board

// PseudoRand is a xorshift64* generator. Tables built from it are reproducible across runs.
type PseudoRand struct {
	s uint64
}

func NewPseudoRand() *PseudoRand {
	return &PseudoRand{s: 1}
}

// Seed resets the state. A zero seed would lock xorshift at zero and is replaced by 1.
func (r *PseudoRand) Seed(seed uint64) {
	if seed == 0 {
		seed = 1
	}
	r.s = seed
}

// SparseUint64 returns a value with roughly an eighth of its bits set, a good magic candidate.
func (r *PseudoRand) SparseUint64() uint64 {
	//nolint:staticcheck // SA4000 intentional
	return r.Uint64() & r.Uint64() & r.Uint64()
}

func (r *PseudoRand) Uint64() uint64 {
	r.s ^= r.s >> 12
	r.s ^= r.s << 25
	r.s ^= r.s >> 27
	return r.s * 2685821657736338717
}
