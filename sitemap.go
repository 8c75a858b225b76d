package reviewengine

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/reviewengine/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// lastMod trims a stored timestamp to the W3C date sitemaps expect.
func lastMod(stamp string) string {
	if len(stamp) < len("2006-01-02") {
		return ""
	}
	return stamp[:len("2006-01-02")]
}

// renderSitemap lists the home page, the published posts, every paper and
// every comment.
func (a *App) renderSitemap(c echo.Context, posts []content.PostView, papers []content.ResearchPaper, comments []content.Comment) error {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "reviews", p.ID),
			LastMod: lastMod(p.UpdatedAt),
		})
	}
	for _, p := range papers {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "papers", p.ID),
			LastMod: lastMod(p.UploadedAt),
		})
	}
	for _, cm := range comments {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "comments", cm.ID),
			LastMod: lastMod(cm.UpdatedAt),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
