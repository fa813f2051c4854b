package listing

import (
	"strings"

	"github.com/lukman83/autovit-sync/internal/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const bullet = "•"

// ParseDescription splits an HTML advert description into paragraphs and
// bullet lists. List items and lines starting with a bullet become list
// entries; paragraphs and line breaks separate blocks; other markup is
// dropped.
func ParseDescription(raw string) []models.DescriptionBlock {
	blocks := []models.DescriptionBlock{}
	if strings.TrimSpace(raw) == "" {
		return blocks
	}

	var list []string
	flush := func() {
		if len(list) > 0 {
			blocks = append(blocks, models.DescriptionBlock{Type: "list", Items: list})
		}
		list = nil
	}
	for _, line := range strings.Split(flatten(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, bullet) {
			if item := strings.TrimSpace(strings.TrimPrefix(line, bullet)); item != "" {
				list = append(list, item)
			}
			continue
		}
		flush()
		blocks = append(blocks, models.DescriptionBlock{Type: "paragraph", Content: line})
	}
	flush()
	return blocks
}

// flatten renders the markup as text with one block per line.
func flatten(raw string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		switch z.Next() {
		case html.ErrorToken:
			r := strings.NewReplacer("\u00a0", " ", "\r", "\n")
			return r.Replace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Li:
				b.WriteString("\n" + bullet + " ")
			case atom.Ul, atom.Ol, atom.P, atom.Br, atom.Div:
				b.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Li, atom.Ul, atom.Ol, atom.P, atom.Div:
				b.WriteString("\n")
			}
		}
	}
}
