package reviewengine

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/reviewengine/content"
)

// feedSize is the number of posts in /feed.xml.
const feedSize = 50

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
}

// rssDate converts a stored timestamp to RFC 1123 form, or "" when it does
// not parse.
func rssDate(stamp string) string {
	t, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return ""
	}
	return t.Format(time.RFC1123Z)
}

func (a *App) renderRSS(c echo.Context, posts []content.PostView) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := BuildURL(base, "reviews", p.ID)
		var cats []string
		for _, ref := range p.Categories {
			if ref.Name != content.Unknown {
				cats = append(cats, ref.Name)
			}
		}
		item := rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: p.Excerpt,
			Categories:  cats,
			PubDate:     rssDate(p.PublishedAt),
			GUID:        postURL,
		}
		if p.Author.Name != content.Unknown {
			item.Author = p.Author.Name
		}
		items = append(items, item)
	}

	channel := rssChannel{
		Title:       a.Config.Name,
		Link:        BuildURL(base),
		Description: a.Config.Description,
		Language:    a.Config.Language,
		Items:       items,
	}
	if len(posts) > 0 {
		channel.LastBuildDate = rssDate(posts[0].PublishedAt)
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(rssXML{Version: "2.0", Channel: channel})
}
