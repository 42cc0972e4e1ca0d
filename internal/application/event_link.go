package application

import (
	"net/url"
	"strings"
)

// Event link types.
const (
	LinkVIP  = "vip"
	LinkFull = "full"
)

// EventPage is the path of the event gallery page.
const EventPage = "/event.html"

// EventLink addresses one album of the event gallery.
type EventLink struct {
	Photographer string
	AlbumID      string
	Type         string
}

// ParseEventLink reads an event link from a full URL, a path with a query
// string, or a bare query string. Parameters that are absent stay empty;
// Init reports them.
func ParseEventLink(raw string) (EventLink, error) {
	raw = strings.TrimSpace(raw)
	query := raw
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		query = raw[i+1:]
	}
	if i := strings.IndexByte(query, '#'); i >= 0 {
		query = query[:i]
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return EventLink{}, ErrInvalidEventLink
	}
	return EventLink{
		Photographer: values.Get("photographer"),
		AlbumID:      values.Get("album"),
		Type:         values.Get("type"),
	}, nil
}

// Complete reports whether every parameter is present.
func (l EventLink) Complete() bool {
	return l.Photographer != "" && l.AlbumID != "" && l.Type != ""
}

// String renders the link as a site relative URL.
func (l EventLink) String() string {
	return EventPage +
		"?photographer=" + url.QueryEscape(l.Photographer) +
		"&album=" + url.QueryEscape(l.AlbumID) +
		"&type=" + url.QueryEscape(l.Type)
}
