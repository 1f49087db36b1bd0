// SPDX-License-Identifier: MIT

package playlist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/CMRapp/Slideshow-sub000/internal/media"
)

// FuzzWriteM3U checks that arbitrary descriptor text always yields two lines per entry.
func FuzzWriteM3U(f *testing.F) {
	f.Add(int64(1), "Blue Team · Photo 1", "Blue Team", "https://cdn.example.com/1.jpg")
	f.Add(int64(0), "", "", "")
	f.Add(int64(-5), "multi\nline\r\nname", `"quoted"`, "https://x\n#EXTINF")
	f.Add(int64(42), "Unicode Тест", "Интер", "rtsp://stream")

	f.Fuzz(func(t *testing.T, id int64, name, group, url string) {
		var buf bytes.Buffer
		items := []Item{{ID: id, Name: name, Group: group, Kind: media.CategoryPhoto, URL: url}}
		if err := WriteM3U(&buf, items); err != nil {
			t.Fatalf("WriteM3U failed: %v", err)
		}

		out := buf.String()
		if !strings.HasPrefix(out, "#EXTM3U\n") {
			t.Fatalf("missing header: %q", out)
		}
		if n := strings.Count(out, "\n"); n != 3 {
			t.Fatalf("expected 3 lines, got %d: %q", n, out)
		}
		if strings.Contains(out, "\r") {
			t.Fatalf("carriage return leaked: %q", out)
		}
	})
}
