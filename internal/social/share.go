// Package social builds the share links shown on listing pages.
package social

import (
	"fmt"
	"net/url"
	"strings"
)

type Platform string

const (
	PlatformWhatsApp Platform = "whatsapp"
	PlatformFacebook Platform = "facebook"
	PlatformTwitter  Platform = "twitter"
	PlatformTelegram Platform = "telegram"
	PlatformEmail    Platform = "email"
)

var AllPlatforms = []Platform{
	PlatformWhatsApp,
	PlatformFacebook,
	PlatformTwitter,
	PlatformTelegram,
	PlatformEmail,
}

var labels = map[Platform]string{
	PlatformWhatsApp: "WhatsApp",
	PlatformFacebook: "Facebook",
	PlatformTwitter:  "X",
	PlatformTelegram: "Telegram",
	PlatformEmail:    "Email",
}

// Listing is what a share message says about a listing
type Listing struct {
	Title    string
	Category string
	City     string
	Price    string
	URL      string
}

type Link struct {
	Platform Platform
	Label    string
	URL      string
}

// Links returns a share link per platform, in AllPlatforms order
func Links(l Listing) []Link {
	links := make([]Link, 0, len(AllPlatforms))
	for _, p := range AllPlatforms {
		links = append(links, Link{Platform: p, Label: labels[p], URL: ShareURL(p, l)})
	}
	return links
}

// Message is the text that goes with the link
func Message(l Listing) string {
	var b strings.Builder
	b.WriteString(l.Title)
	if l.Category != "" && l.City != "" {
		fmt.Fprintf(&b, " (%s in %s)", l.Category, l.City)
	} else if l.City != "" {
		fmt.Fprintf(&b, " in %s", l.City)
	}
	if l.Price != "" {
		fmt.Fprintf(&b, " - %s/month", l.Price)
	}
	b.WriteString(" on CampusConnect")
	return b.String()
}

func ShareURL(p Platform, l Listing) string {
	text := Message(l)
	switch p {
	case PlatformWhatsApp:
		return "https://wa.me/?text=" + url.QueryEscape(text+"\n"+l.URL)
	case PlatformFacebook:
		return "https://www.facebook.com/sharer/sharer.php?u=" + url.QueryEscape(l.URL)
	case PlatformTwitter:
		return fmt.Sprintf("https://twitter.com/intent/tweet?text=%s&url=%s",
			url.QueryEscape(truncate(text, 200)),
			url.QueryEscape(l.URL),
		)
	case PlatformTelegram:
		return fmt.Sprintf("https://t.me/share/url?url=%s&text=%s",
			url.QueryEscape(l.URL),
			url.QueryEscape(text),
		)
	case PlatformEmail:
		return fmt.Sprintf("mailto:?subject=%s&body=%s",
			url.PathEscape(l.Title),
			url.PathEscape(text+"\n\n"+l.URL),
		)
	}
	return ""
}

// truncate cuts text at a word boundary so it fits in max bytes
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := text[:max-3]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
