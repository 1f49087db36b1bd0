// SPDX-License-Identifier: MIT

// Package media defines the playable media descriptors cycled by the slideshow.
package media

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Category distinguishes the two kinds of uploaded media.
type Category string

const (
	CategoryPhoto Category = "photo"
	CategoryVideo Category = "video"
)

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// IsValid checks whether the category is one of the known kinds.
func (c Category) IsValid() bool {
	switch c {
	case CategoryPhoto, CategoryVideo:
		return true
	default:
		return false
	}
}

// Descriptor is the minimal data needed to render one slideshow item.
// Descriptors are values: a playlist is replaced wholesale or reordered, never edited in place.
type Descriptor struct {
	ID       int64    `json:"id"`
	Team     string   `json:"team_name"`
	MIMEType string   `json:"mime_type"`
	URL      string   `json:"url"`
	Category Category `json:"category,omitempty"`
	Sequence int      `json:"sequence,omitempty"`
}

// Kind reports whether the descriptor is a photo or a video.
// An explicit category wins; otherwise the MIME type decides.
func (d Descriptor) Kind() Category {
	if d.Category.IsValid() {
		return d.Category
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(d.MIMEType)), "video/") {
		return CategoryVideo
	}
	return CategoryPhoto
}

// IsVideo is shorthand for Kind() == CategoryVideo.
func (d Descriptor) IsVideo() bool {
	return d.Kind() == CategoryVideo
}

// Label renders the per-team display label, e.g. "Photo 3".
func (d Descriptor) Label() string {
	// Casers carry state and must not be shared across goroutines.
	kind := cases.Title(language.English).String(d.Kind().String())
	if d.Sequence <= 0 {
		return kind
	}
	return kind + " " + strconv.Itoa(d.Sequence)
}

// TeamName returns the NFC-normalised, trimmed team name.
func (d Descriptor) TeamName() string {
	return norm.NFC.String(strings.TrimSpace(d.Team))
}

// Caption joins the team name and label for display ("Blue Team · Photo 3").
func (d Descriptor) Caption() string {
	team := d.TeamName()
	if team == "" {
		return d.Label()
	}
	return team + " · " + d.Label()
}

// HasPlayableURL reports whether the URL is non-empty and uses a network scheme.
// Filtering is the data source's job; callers use this for diagnostics only.
func (d Descriptor) HasPlayableURL() bool {
	raw := strings.TrimSpace(d.URL)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	default:
		return false
	}
}

// IDs returns the identifiers of items in order.
func IDs(items []Descriptor) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
