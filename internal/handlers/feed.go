package handlers

import (
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pqsaaay/internal/models"
	"pqsaaay/internal/services"
	"pqsaaay/internal/utils"
)

const feedSize = 20

var blockRe = regexp.MustCompile(`(?s)(<(?:p|h[1-6]|ul|ol|blockquote|pre)[^>]*>.*?</(?:p|h[1-6]|ul|ol|blockquote|pre)>)`)

type FeedHandler struct {
	posts   *services.PostService
	siteURL string
}

func NewFeedHandler(posts *services.PostService, siteURL string) *FeedHandler {
	return &FeedHandler{posts: posts, siteURL: strings.TrimSuffix(siteURL, "/")}
}

// RSSFeed GET /feed.xml, an RSS 2.0 feed of the latest posts.
func (h *FeedHandler) RSSFeed(c *gin.Context) {
	posts, err := h.posts.ListPosts(services.ListOptions{Limit: feedSize})
	if err != nil {
		fail(c, "feed", err)
		return
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">
  <channel>
    <title>Pqsaaay</title>
    <link>` + h.siteURL + `</link>
    <description>Kritik, saran, curhat dan ide dari warga</description>
    <language>id</language>
    <lastBuildDate>` + time.Now().UTC().Format(time.RFC1123Z) + `</lastBuildDate>
    <atom:link href="` + h.siteURL + `/feed.xml" rel="self" type="application/rss+xml"/>
`)

	for _, post := range posts {
		link := fmt.Sprintf("%s/api/posts/%s", h.siteURL, post.ID)
		// 只保留前 3 个块级元素作为摘要
		content := truncateByParagraph(utils.RenderMarkdown(post.Content), 3)

		b.WriteString(`    <item>
      <title>` + html.EscapeString(feedTitle(post)) + `</title>
      <link>` + link + `</link>
      <description><![CDATA[` + content + `]]></description>
      <author>` + html.EscapeString(post.Author) + `</author>
      <category>` + string(post.Category) + `</category>
      <pubDate>` + post.Timestamp.Format(time.RFC1123Z) + `</pubDate>
      <guid isPermaLink="false">` + post.ID + `</guid>
    </item>
`)
	}
	b.WriteString(`  </channel>
</rss>`)

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

// feedTitle falls back to the start of the content for untitled posts.
func feedTitle(p models.Post) string {
	if p.Title != "" {
		return p.Title
	}
	runes := []rune(p.Content)
	if len(runes) > 60 {
		return string(runes[:60]) + "..."
	}
	return p.Content
}

// truncateByParagraph 按段落截取HTML，保留前几个完整块级元素
func truncateByParagraph(content string, maxBlocks int) string {
	matches := blockRe.FindAllString(content, maxBlocks)
	if len(matches) == 0 {
		runes := []rune(utils.StripTags(content))
		if len(runes) > 300 {
			return string(runes[:300]) + "..."
		}
		return content
	}
	return strings.Join(matches, "\n")
}
