// Package messaging builds outbound customer messaging links.
package messaging

import (
	"net/url"
	"strings"
)

// WhatsAppLink builds a wa.me link to the store's number with a pre-filled
// message. The number may contain spaces, dashes or a leading plus; only the
// digits survive. An empty number yields an empty link.
func WhatsAppLink(number, message string) string {
	digits := onlyDigits(number)
	if digits == "" {
		return ""
	}

	link := "https://wa.me/" + digits
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
