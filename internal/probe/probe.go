package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/grafov/m3u8"

	"github.com/ytget/m3u8-downloader/internal/platform"
)

// DefaultTimeout bounds one playlist fetch
const DefaultTimeout = 10 * time.Second

// maxPlaylistSize limits how much of a playlist is read
const maxPlaylistSize = 8 << 20

// ErrNotPlaylist is returned for content that is not an m3u8 playlist
var ErrNotPlaylist = errors.New("not an m3u8 playlist")

// Variant is one rendition listed in a master playlist
type Variant struct {
	URL        string
	Bandwidth  uint32
	Resolution string
	Codecs     string
	Name       string
}

// Label returns a short human-readable description, e.g. "1280x720 2.5 Mbps"
func (v Variant) Label() string {
	parts := make([]string, 0, 3)
	if v.Name != "" {
		parts = append(parts, v.Name)
	}
	if v.Resolution != "" {
		parts = append(parts, v.Resolution)
	}
	if v.Bandwidth > 0 {
		parts = append(parts, humanize.SIWithDigits(float64(v.Bandwidth), 1, "bps"))
	}
	if len(parts) == 0 {
		return v.URL
	}
	return strings.Join(parts, " ")
}

// Result describes a probed playlist
type Result struct {
	URL      string
	Master   bool
	Variants []Variant // master only, highest bandwidth first

	// media only
	Segments int
	Duration time.Duration
	Live     bool
}

// Best returns the highest-bandwidth variant
func (r *Result) Best() (Variant, bool) {
	if len(r.Variants) == 0 {
		return Variant{}, false
	}
	return r.Variants[0], true
}

// Prober fetches and inspects playlists
type Prober struct {
	client *http.Client
}

// NewProber creates a prober with the given fetch timeout
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{client: &http.Client{Timeout: timeout}}
}

// Probe fetches rawURL, sending cookies verbatim when set, and parses it
func (p *Prober) Probe(ctx context.Context, rawURL, cookies string) (*Result, error) {
	base, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid playlist url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, err
	}
	if cookies = strings.TrimSpace(cookies); cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch playlist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch playlist: status %d", resp.StatusCode)
	}

	return Parse(base, io.LimitReader(resp.Body, maxPlaylistSize))
}

// Parse decodes a playlist; relative variant URIs are resolved against base
func Parse(base *url.URL, content io.Reader) (*Result, error) {
	playlist, listType, err := m3u8.DecodeFrom(content, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPlaylist, err)
	}

	result := &Result{URL: base.String()}
	switch listType {
	case m3u8.MASTER:
		master := playlist.(*m3u8.MasterPlaylist)
		result.Master = true
		for _, v := range master.Variants {
			if v == nil || v.Iframe {
				continue
			}
			result.Variants = append(result.Variants, Variant{
				URL:        resolve(base, v.URI),
				Bandwidth:  v.Bandwidth,
				Resolution: v.Resolution,
				Codecs:     v.Codecs,
				Name:       v.Name,
			})
		}
		sort.SliceStable(result.Variants, func(i, j int) bool {
			return result.Variants[i].Bandwidth > result.Variants[j].Bandwidth
		})
	case m3u8.MEDIA:
		media := playlist.(*m3u8.MediaPlaylist)
		var total float64
		for _, seg := range media.Segments {
			if seg == nil {
				continue
			}
			result.Segments++
			total += seg.Duration
		}
		result.Duration = time.Duration(total * float64(time.Second))
		result.Live = !media.Closed
	default:
		return nil, ErrNotPlaylist
	}
	return result, nil
}

func resolve(base *url.URL, ref string) string {
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(refURL).String()
}

// SuggestFilename derives an output name from a playlist URL: the last path
// element with its extension replaced by .mp4
func SuggestFilename(rawURL string) string {
	name := ""
	if u, err := url.Parse(strings.TrimSpace(rawURL)); err == nil {
		name = path.Base(u.Path)
	}
	if name == "." || name == "/" {
		name = ""
	}
	name = strings.TrimSuffix(name, path.Ext(name))
	if name == "" || name == "index" || name == "playlist" || name == "master" {
		name = "video_" + time.Now().Format("20060102_150405")
	}
	return platform.SanitizeFilename(name) + ".mp4"
}
