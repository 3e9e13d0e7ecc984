package rjmcmc

import "math/rand/v2"

// NoKernel is the kernel id reported when a selection draw falls past the
// last kernel of a tuple.
const NoKernel = -1

// Kernel is a weighted proposal mechanism.
//
// Size is the number of leaf alternatives the kernel represents and is fixed
// at construction. Probability is the kernel's selection mass; composite
// kernels use it to route the selection draw.
//
// Propose receives the part of the selection draw that fell inside this
// kernel, u in [0, Probability()). It fills d and returns the proposal ratio
// (reverse over forward density, selection masses included) together with
// the local id of the leaf that fired, in [0, Size()).
type Kernel[T any] interface {
	Size() int
	Probability() float64
	SetProbability(p float64)
	Propose(u float64, c Configuration[T], d *Diff[T], rng *rand.Rand) (ratio float64, id int)
}

// Binary couples two moves into one reversible pair, typically a birth and a
// death. Leaf 0 is the first move and leaf 1 the second.
type Binary[T any] struct {
	moves [2]Move[T]
	p     [2]float64
}

// NewBinary returns a kernel firing m0 with mass p0 and m1 with mass p1.
func NewBinary[T any](m0, m1 Move[T], p0, p1 float64) *Binary[T] {
	return &Binary[T]{moves: [2]Move[T]{m0, m1}, p: [2]float64{p0, p1}}
}

// NewBirthDeath returns the uniform birth/death pair: leaf 0 births an
// object from gen, leaf 1 kills a uniformly chosen object.
func NewBirthDeath[T any](gen Generator[T], pBirth, pDeath float64) *Binary[T] {
	return NewBinary[T](NewBirthMove(gen), DeathMove[T]{}, pBirth, pDeath)
}

// Size returns 2.
func (b *Binary[T]) Size() int { return 2 }

// Probability returns p0 + p1.
func (b *Binary[T]) Probability() float64 { return b.p[0] + b.p[1] }

// SetProbability rescales both masses so they sum to p, keeping their ratio.
// If both masses are zero the new total is split evenly.
func (b *Binary[T]) SetProbability(p float64) {
	sum := b.Probability()
	if sum == 0 {
		b.p[0], b.p[1] = p/2, p/2
		return
	}
	r := p / sum
	b.p[0] *= r
	b.p[1] *= r
}

// MoveProbability returns the mass of leaf i.
func (b *Binary[T]) MoveProbability(i int) float64 { return b.p[i] }

// SetMoveProbability sets the mass of leaf i; the total changes accordingly.
func (b *Binary[T]) SetMoveProbability(i int, p float64) { b.p[i] = p }

// Propose fires leaf 0 when u < p0 and leaf 1 otherwise. The fired move runs
// forward and the other move evaluates the reverse density; the result is
// (p_other * pdf_other) / (p_fired * forward_fired). A zero forward density
// yields 0.
func (b *Binary[T]) Propose(u float64, c Configuration[T], d *Diff[T], rng *rand.Rand) (float64, int) {
	i, j := 0, 1
	if u >= b.p[0] {
		i, j = 1, 0
	}
	x := b.p[i] * b.moves[i].Forward(c, d, rng)
	if x <= 0 {
		return 0, i
	}
	y := b.p[j] * b.moves[j].Pdf(c, d)
	return y / x, i
}

// Tuple selects among heterogeneous kernels by successive subtraction of
// their masses from the selection draw. Leaf ids are numbered across the
// kernels in order, so a tuple of (birth/death, modification) numbers birth
// 0, death 1 and modification 2.
type Tuple[T any] struct {
	kernels []Kernel[T]
}

// NewTuple returns a tuple over kernels, in order.
func NewTuple[T any](kernels ...Kernel[T]) *Tuple[T] {
	return &Tuple[T]{kernels: kernels}
}

// Kernels returns the kernels in selection order.
func (t *Tuple[T]) Kernels() []Kernel[T] { return t.kernels }

// Size returns the total number of leaves.
func (t *Tuple[T]) Size() int {
	n := 0
	for _, k := range t.kernels {
		n += k.Size()
	}
	return n
}

// Probability returns the total mass.
func (t *Tuple[T]) Probability() float64 {
	var p float64
	for _, k := range t.kernels {
		p += k.Probability()
	}
	return p
}

// SetProbability rescales every kernel so the masses sum to p.
func (t *Tuple[T]) SetProbability(p float64) {
	sum := t.Probability()
	if sum == 0 {
		return
	}
	r := p / sum
	for _, k := range t.kernels {
		k.SetProbability(k.Probability() * r)
	}
}

// Propose walks the kernels, subtracting each mass from u. The first kernel
// for which the residual would go negative is invoked with the residual
// before subtraction. When no kernel claims u the ratio is 0 and the id is
// NoKernel.
func (t *Tuple[T]) Propose(u float64, c Configuration[T], d *Diff[T], rng *rand.Rand) (float64, int) {
	x := u
	offset := 0
	for _, k := range t.kernels {
		p := k.Probability()
		if x-p < 0 {
			r, id := k.Propose(x, c, d, rng)
			return r, offset + id
		}
		x -= p
		offset += k.Size()
	}
	return 0, NoKernel
}
