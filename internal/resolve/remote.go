package resolve

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/vmunix/reprise/internal/library"
)

// Provider identifies a remote video host.
type Provider string

const (
	ProviderYouTube Provider = "youtube"
	ProviderDrive   Provider = "drive"
	ProviderVimeo   Provider = "vimeo"
)

var (
	youTubeIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)
	driveFileRegex = regexp.MustCompile(`/file/d/([A-Za-z0-9_-]+)`)
	vimeoIDRegex   = regexp.MustCompile(`^/(?:video/)?(\d+)`)
)

// EmbedURL returns the embeddable URL for a provider and id.
func EmbedURL(p Provider, id string) string {
	switch p {
	case ProviderYouTube:
		return "https://www.youtube.com/embed/" + id
	case ProviderDrive:
		return "https://drive.google.com/file/d/" + id + "/preview"
	case ProviderVimeo:
		return "https://player.vimeo.com/video/" + id
	default:
		return ""
	}
}

// RemoteFor returns the remote source for v, if v has a remote identity.
// A URL on an unrecognised host is not remote.
func RemoteFor(v *library.Video) (Remote, bool) {
	if v.YouTubeID != "" {
		return newRemote(ProviderYouTube, v.YouTubeID), true
	}
	if v.DriveFileID != "" {
		return newRemote(ProviderDrive, v.DriveFileID), true
	}
	if v.URL != "" {
		return ParseURL(v.URL)
	}
	return Remote{}, false
}

func newRemote(p Provider, id string) Remote {
	return Remote{URL: EmbedURL(p, id), Provider: p, EmbedID: id}
}

// ParseURL recognises YouTube, Google Drive and Vimeo links.
func ParseURL(raw string) (Remote, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return Remote{}, false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	switch host {
	case "youtube.com", "youtube-nocookie.com":
		id := u.Query().Get("v")
		if id == "" {
			for _, prefix := range []string{"/embed/", "/shorts/", "/live/"} {
				if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
					id, _, _ = strings.Cut(rest, "/")
					break
				}
			}
		}
		if youTubeIDRegex.MatchString(id) {
			return newRemote(ProviderYouTube, id), true
		}
	case "youtu.be":
		id, _, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if youTubeIDRegex.MatchString(id) {
			return newRemote(ProviderYouTube, id), true
		}
	case "drive.google.com":
		if m := driveFileRegex.FindStringSubmatch(u.Path); m != nil {
			return newRemote(ProviderDrive, m[1]), true
		}
		if id := u.Query().Get("id"); id != "" {
			return newRemote(ProviderDrive, id), true
		}
	case "vimeo.com", "player.vimeo.com":
		if m := vimeoIDRegex.FindStringSubmatch(u.Path); m != nil {
			return newRemote(ProviderVimeo, m[1]), true
		}
	}
	return Remote{}, false
}
