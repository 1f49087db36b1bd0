// SPDX-License-Identifier: MIT

package slideshow

import "github.com/CMRapp/Slideshow-sub000/internal/media"

// PlaylistState is the engine's working state. It is owned by exactly one
// goroutine and is not safe for concurrent use.
//
// Index is -1 when the list is empty; otherwise 0 <= Index < len(Items).
type PlaylistState struct {
	Items    []media.Descriptor
	Index    int
	Failures int
	Visible  bool
	Cycles   int
}

// NewPlaylistState returns the initial empty state (no cursor, page visible).
func NewPlaylistState() PlaylistState {
	return PlaylistState{Index: -1, Visible: true}
}

// Len returns the number of items.
func (s *PlaylistState) Len() int {
	return len(s.Items)
}

// Empty reports whether there is nothing to show.
func (s *PlaylistState) Empty() bool {
	return len(s.Items) == 0
}

// Current returns the descriptor under the cursor.
func (s *PlaylistState) Current() (media.Descriptor, bool) {
	if s.Empty() || s.Index < 0 || s.Index >= len(s.Items) {
		return media.Descriptor{}, false
	}
	return s.Items[s.Index], true
}

// Next moves the cursor forward one slot, wrapping to 0.
// It reports whether the move wrapped from the last index to the first.
func (s *PlaylistState) Next() bool {
	n := len(s.Items)
	if n == 0 {
		return false
	}
	s.Index = (s.Index + 1) % n
	return s.Index == 0
}

// Previous moves the cursor back one slot, wrapping to the last index.
func (s *PlaylistState) Previous() {
	n := len(s.Items)
	if n == 0 {
		return
	}
	s.Index = (s.Index - 1 + n) % n
}

// Replace swaps in a freshly fetched list.
//
// Cursor policy: an empty list clears the cursor; a list arriving after an empty
// one starts at 0; otherwise the old index is reduced modulo the new length.
// The cycle counter restarts with every replacement.
func (s *PlaylistState) Replace(items []media.Descriptor) {
	wasEmpty := s.Empty()
	s.Items = append([]media.Descriptor(nil), items...)
	s.Cycles = 0

	n := len(s.Items)
	switch {
	case n == 0:
		s.Index = -1
	case wasEmpty || s.Index < 0:
		s.Index = 0
	default:
		s.Index %= n
	}
}
