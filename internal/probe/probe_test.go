package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

const masterPlaylist = `#EXTM3U
#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=800000,RESOLUTION=640x360,CODECS="avc1.4d401e,mp4a.40.2"
360p/index.m3u8
#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=2500000,RESOLUTION=1280x720,CODECS="avc1.4d401f,mp4a.40.2"
720p/index.m3u8
#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=1400000,RESOLUTION=854x480
https://cdn.example.com/480p/index.m3u8
`

const mediaPlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:10
#EXT-X-MEDIA-SEQUENCE:0
#EXTINF:10.0,
seg0.ts
#EXTINF:10.0,
seg1.ts
#EXTINF:4.5,
seg2.ts
#EXT-X-ENDLIST
`

func TestParse_Master(t *testing.T) {
	base, _ := url.Parse("https://video.example.com/show/master.m3u8")

	result, err := Parse(base, strings.NewReader(masterPlaylist))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !result.Master {
		t.Fatal("Expected master playlist")
	}
	if len(result.Variants) != 3 {
		t.Fatalf("Expected 3 variants, got %d", len(result.Variants))
	}

	best, ok := result.Best()
	if !ok {
		t.Fatal("Expected a best variant")
	}
	if best.URL != "https://video.example.com/show/720p/index.m3u8" {
		t.Errorf("Expected resolved 720p URL, got %s", best.URL)
	}
	if best.Resolution != "1280x720" || best.Bandwidth != 2500000 {
		t.Errorf("Unexpected best variant %+v", best)
	}
	if result.Variants[1].URL != "https://cdn.example.com/480p/index.m3u8" {
		t.Errorf("Expected absolute URI kept, got %s", result.Variants[1].URL)
	}
	if result.Variants[2].Bandwidth != 800000 {
		t.Errorf("Expected lowest bandwidth last, got %d", result.Variants[2].Bandwidth)
	}
}

func TestParse_Media(t *testing.T) {
	base, _ := url.Parse("https://video.example.com/show/720p/index.m3u8")

	result, err := Parse(base, strings.NewReader(mediaPlaylist))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Master {
		t.Fatal("Expected media playlist")
	}
	if result.Segments != 3 {
		t.Errorf("Expected 3 segments, got %d", result.Segments)
	}
	if result.Duration != 24500*time.Millisecond {
		t.Errorf("Expected 24.5s, got %v", result.Duration)
	}
	if result.Live {
		t.Error("Expected VOD playlist with ENDLIST")
	}
	if _, ok := result.Best(); ok {
		t.Error("Expected no variants for a media playlist")
	}
}

func TestParse_NotPlaylist(t *testing.T) {
	base, _ := url.Parse("https://video.example.com/page.html")

	_, err := Parse(base, strings.NewReader("<html></html>"))
	if !errors.Is(err, ErrNotPlaylist) {
		t.Errorf("Expected ErrNotPlaylist, got %v", err)
	}
}

func TestProber_Probe(t *testing.T) {
	cookies := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/master.m3u8":
			cookies <- r.Header.Get("Cookie")
			w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
			w.Write([]byte(masterPlaylist))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	prober := NewProber(time.Second)
	result, err := prober.Probe(context.Background(), server.URL+"/master.m3u8", "sid=42")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotCookie := <-cookies; gotCookie != "sid=42" {
		t.Errorf("Expected cookie to be forwarded, got %q", gotCookie)
	}
	best, _ := result.Best()
	if best.URL != server.URL+"/720p/index.m3u8" {
		t.Errorf("Expected resolved variant URL, got %s", best.URL)
	}

	if _, err := prober.Probe(context.Background(), server.URL+"/missing.m3u8", ""); err == nil {
		t.Error("Expected error for 404")
	}
	if _, err := prober.Probe(context.Background(), "not a url", ""); err == nil {
		t.Error("Expected error for invalid url")
	}
}

func TestVariant_Label(t *testing.T) {
	tests := []struct {
		variant  Variant
		expected string
	}{
		{Variant{Resolution: "1280x720", Bandwidth: 2500000}, "1280x720 2.5 Mbps"},
		{Variant{Name: "HD", Resolution: "1920x1080"}, "HD 1920x1080"},
		{Variant{URL: "https://x/a.m3u8"}, "https://x/a.m3u8"},
	}

	for _, test := range tests {
		if result := test.variant.Label(); result != test.expected {
			t.Errorf("Label(%+v) = %q, expected %q", test.variant, result, test.expected)
		}
	}
}

func TestSuggestFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://x/shows/episode-01.m3u8", "episode-01.mp4"},
		{"https://x/shows/episode-01.m3u8?token=abc", "episode-01.mp4"},
		{"https://x/a:b.m3u8", "a_b.mp4"},
	}

	for _, test := range tests {
		if result := SuggestFilename(test.input); result != test.expected {
			t.Errorf("SuggestFilename(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}

	if name := SuggestFilename("https://x/hls/index.m3u8"); !strings.HasPrefix(name, "video_") || !strings.HasSuffix(name, ".mp4") {
		t.Errorf("Expected generated name for generic playlist, got %q", name)
	}
}
