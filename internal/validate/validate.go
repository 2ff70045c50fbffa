package validate

import (
	"fmt"
	"net/url"
)

// Text field length limits for video sections.
const (
	MaxSectionTitleLength = 200
	MaxSourceURLLength    = 2048
	MaxFileKeyLength      = 512
)

func checkLen(value string, max int, field string) string {
	if len(value) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, max)
	}
	return ""
}

func SectionTitle(s string) string { return checkLen(s, MaxSectionTitleLength, "title") }
func FileKey(s string) string      { return checkLen(s, MaxFileKeyLength, "file key") }

// SourceURL checks an embed address. Only absolute https URLs are accepted.
func SourceURL(s string) string {
	if msg := checkLen(s, MaxSourceURLLength, "source URL"); msg != "" {
		return msg
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return "source URL must be an absolute https URL"
	}
	return ""
}
