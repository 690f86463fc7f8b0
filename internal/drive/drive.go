// Package drive normalizes Google Drive document links.
package drive

import (
	"net/url"
	"regexp"
)

var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/open\?id=([a-zA-Z0-9_-]+)`),
}

// ID extracts the Drive file id from a share link, or returns "" if none is recognized
func ID(link string) string {
	for _, re := range idPatterns {
		if m := re.FindStringSubmatch(link); m != nil {
			return m[1]
		}
	}
	return ""
}

// EmbedURL returns the iframe preview link for a document, or the link itself
// when it carries no Drive id
func EmbedURL(link string) string {
	id := ID(link)
	if id == "" {
		return link
	}
	return "https://drive.google.com/file/d/" + id + "/preview"
}

// DownloadURL returns the direct download link for a document, or the link itself
// when it carries no Drive id
func DownloadURL(link string) string {
	id := ID(link)
	if id == "" {
		return link
	}
	return "https://drive.google.com/uc?export=download&id=" + url.QueryEscape(id)
}

// Links bundles every form of a document link
type Links struct {
	Source   string `json:"source"`
	ID       string `json:"id,omitempty"`
	Embed    string `json:"embed"`
	Download string `json:"download"`
}

// Normalize returns all link forms for a document
func Normalize(link string) Links {
	return Links{
		Source:   link,
		ID:       ID(link),
		Embed:    EmbedURL(link),
		Download: DownloadURL(link),
	}
}
