// SPDX-License-Identifier: MIT

package slideshow

import (
	"math/rand/v2"

	"github.com/CMRapp/Slideshow-sub000/internal/media"
)

// DefaultReshuffleEvery is the number of full cycles between reshuffles.
const DefaultReshuffleEvery = 5

// Reshuffler permutes the playlist every Every full cycles.
type Reshuffler struct {
	Every int
	rng   *rand.Rand
}

// NewReshuffler creates a reshuffler. A nil rng uses the global source.
func NewReshuffler(every int, rng *rand.Rand) *Reshuffler {
	return &Reshuffler{Every: every, rng: rng}
}

// OnWrap records one completed cycle and reshuffles when the count reaches a
// multiple of Every. The cursor index is left untouched.
func (r *Reshuffler) OnWrap(s *PlaylistState) bool {
	s.Cycles++
	if r.Every <= 0 || s.Cycles%r.Every != 0 {
		return false
	}
	Shuffle(s.Items, r.rng)
	return true
}

// Shuffle permutes items in place with a uniform Fisher–Yates shuffle.
func Shuffle(items []media.Descriptor, rng *rand.Rand) {
	swap := func(i, j int) { items[i], items[j] = items[j], items[i] }
	if rng == nil {
		rand.Shuffle(len(items), swap)
		return
	}
	rng.Shuffle(len(items), swap)
}
