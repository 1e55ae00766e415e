// Package notify implements the notification core: formatting a
// breaking item per recipient class, deciding its novelty, and fanning
// it out to the subscriber set.
package notify

import (
	"html"
	"strings"

	"eilbot/internal/model"
)

const (
	groupPrefix = "#EIL: "
	linkLabel   = "Eilmeldung aufrufen"
	timeLayout  = "02.01.2006 um 15:04:05 Uhr"
)

// Payload is a rendered Telegram message: HTML text plus an optional
// URL button.
type Payload struct {
	Text       string
	ButtonText string
	ButtonURL  string
}

// Render formats a breaking item for the given recipient class. It is a
// pure function: the same item and class always produce the same
// payload.
//
// Group chats get a tag prefix and the link as an inline-keyboard
// button, since link previews are suppressed there. Private chats get
// the link appended as inline markup instead.
func Render(item model.NewsItem, class model.RecipientClass) Payload {
	var b strings.Builder
	b.WriteString("<b>" + html.EscapeString(item.Title) + "</b>\n")
	b.WriteString("<i>" + item.PublishedAt.Format(timeLayout) + "</i>")
	if body := strings.TrimSpace(item.Body); body != "" {
		b.WriteString("\n" + html.EscapeString(body))
	}

	link := NormalizeLink(item.URL)

	if class == model.ClassGroup {
		return Payload{
			Text:       groupPrefix + b.String(),
			ButtonText: linkLabel,
			ButtonURL:  link,
		}
	}

	b.WriteString("\n<a href=\"" + link + "\">" + linkLabel + "</a>")
	return Payload{Text: b.String()}
}

// NormalizeLink turns an API detail URL into the reader-facing page:
// the "/api/" path segment is dropped and a trailing ".json" becomes
// ".html".
func NormalizeLink(url string) string {
	url = strings.Replace(url, "/api/", "/", 1)
	if strings.HasSuffix(url, ".json") {
		url = strings.TrimSuffix(url, ".json") + ".html"
	}
	return url
}
