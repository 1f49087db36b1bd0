// SPDX-License-Identifier: MIT

package slideshow

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CMRapp/Slideshow-sub000/internal/media"
)

func descriptors(n int) []media.Descriptor {
	out := make([]media.Descriptor, n)
	for i := range out {
		out[i] = media.Descriptor{
			ID:       int64(i + 1),
			Team:     fmt.Sprintf("Team %c", 'A'+i),
			MIMEType: "image/jpeg",
			URL:      fmt.Sprintf("https://cdn.example.com/%d.jpg", i+1),
		}
	}
	return out
}

func stateWith(n, index int) PlaylistState {
	s := NewPlaylistState()
	s.Replace(descriptors(n))
	s.Index = index
	return s
}

func TestPlaylistState_Initial(t *testing.T) {
	s := NewPlaylistState()
	assert.True(t, s.Empty())
	assert.Equal(t, -1, s.Index)
	assert.True(t, s.Visible)

	_, ok := s.Current()
	assert.False(t, ok)
	assert.False(t, s.Next())
	s.Previous()
	assert.Equal(t, -1, s.Index)
}

func TestPlaylistState_NextWraps(t *testing.T) {
	s := stateWith(3, 0)

	var got []int
	var wraps []bool
	for i := 0; i < 3; i++ {
		wraps = append(wraps, s.Next())
		got = append(got, s.Index)
	}
	assert.Equal(t, []int{1, 2, 0}, got)
	assert.Equal(t, []bool{false, false, true}, wraps)
}

func TestPlaylistState_PreviousWraps(t *testing.T) {
	s := stateWith(3, 0)
	s.Previous()
	assert.Equal(t, 2, s.Index)
	s.Previous()
	assert.Equal(t, 1, s.Index)
}

func TestPlaylistState_CycleProperty(t *testing.T) {
	for n := 1; n <= 7; n++ {
		for start := 0; start < n; start++ {
			s := stateWith(n, start)
			for i := 0; i < n; i++ {
				s.Next()
			}
			assert.Equal(t, start, s.Index, "n=%d start=%d", n, start)
		}
	}
}

func TestPlaylistState_NextPreviousInverse(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for start := 0; start < n; start++ {
			s := stateWith(n, start)
			s.Next()
			s.Previous()
			assert.Equal(t, start, s.Index)

			s.Previous()
			s.Next()
			assert.Equal(t, start, s.Index)
		}
	}
}

func TestPlaylistState_Replace(t *testing.T) {
	tests := []struct {
		name      string
		initial   int
		index     int
		newLen    int
		wantIndex int
	}{
		{name: "shrink clamps modulo", initial: 5, index: 4, newLen: 2, wantIndex: 0},
		{name: "shrink keeps in-range index", initial: 5, index: 1, newLen: 3, wantIndex: 1},
		{name: "shrink odd remainder", initial: 6, index: 5, newLen: 4, wantIndex: 1},
		{name: "grow keeps index", initial: 2, index: 1, newLen: 5, wantIndex: 1},
		{name: "empty clears cursor", initial: 3, index: 2, newLen: 0, wantIndex: -1},
		{name: "repopulate starts at zero", initial: 0, index: -1, newLen: 4, wantIndex: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewPlaylistState()
			if tt.initial > 0 {
				s = stateWith(tt.initial, tt.index)
			}
			s.Cycles = 3

			s.Replace(descriptors(tt.newLen))

			assert.Equal(t, tt.wantIndex, s.Index)
			assert.Equal(t, tt.newLen, s.Len())
			assert.Zero(t, s.Cycles)
		})
	}
}

func TestPlaylistState_ReplaceCopiesInput(t *testing.T) {
	items := descriptors(3)
	s := NewPlaylistState()
	s.Replace(items)

	items[0].Team = "mutated"
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "Team A", cur.Team)
}
