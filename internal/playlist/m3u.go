// SPDX-License-Identifier: MIT

// Package playlist renders the current playback order as an extended M3U file.
package playlist

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/CMRapp/Slideshow-sub000/internal/media"
)

// Item is one M3U entry.
type Item struct {
	ID    int64
	Name  string
	Group string
	Kind  media.Category
	URL   string
}

// FromDescriptors maps descriptors to entries, preserving order.
func FromDescriptors(items []media.Descriptor) []Item {
	out := make([]Item, len(items))
	for i, d := range items {
		out[i] = Item{
			ID:    d.ID,
			Name:  d.Caption(),
			Group: d.TeamName(),
			Kind:  d.Kind(),
			URL:   d.URL,
		}
	}
	return out
}

var (
	attrEscaper = strings.NewReplacer(`"`, "'", "\r", " ", "\n", " ")
	lineEscaper = strings.NewReplacer("\r", " ", "\n", " ")
)

// WriteM3U writes items as an extended M3U document. Values are sanitised so
// that every entry occupies exactly two lines.
func WriteM3U(w io.Writer, items []Item) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("#EXTM3U\n"); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := fmt.Fprintf(bw,
			"#EXTINF:-1 tvg-id=\"%d\" media-kind=\"%s\" group-title=\"%s\",%s\n%s\n",
			it.ID,
			attrEscaper.Replace(string(it.Kind)),
			attrEscaper.Replace(it.Group),
			lineEscaper.Replace(it.Name),
			lineEscaper.Replace(it.URL),
		); err != nil {
			return err
		}
	}
	return bw.Flush()
}
