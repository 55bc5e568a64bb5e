// Package render turns a digest's article list into the outgoing HTML body.
package render

import (
	"fmt"
	"html/template"
	"strings"

	"newsflow/internal/news"
)

var digestTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:24px;background:#f4f4f7;font-family:Arial,Helvetica,sans-serif;">
  <div style="max-width:640px;margin:0 auto;">
    <h2 style="color:#1a1a2e;">{{.Title}}</h2>
    {{range $i, $a := .Articles}}
    <div style="background:#ffffff;border-radius:8px;padding:16px;margin-bottom:12px;">
      <h3 style="margin:0 0 4px 0;color:#16213e;">{{inc $i}}. {{$a.Title}}</h3>
      <p style="margin:0 0 8px 0;color:#8a8a9e;font-size:12px;">{{$a.DisplayLink}}</p>
      <p style="margin:0 0 8px 0;color:#333;font-size:14px;">{{$a.Summary}}</p>
      <a href="{{$a.Link}}" style="color:#0f3460;font-size:13px;">Read more</a>
    </div>
    {{end}}
  </div>
</body>
</html>`))

type digestData struct {
	Title    string
	Articles []news.FinalArticle
}

// Digest renders the fixed numbered-card layout: title, source domain,
// summary, link.
func Digest(articles []news.FinalArticle, title string) (string, error) {
	if title == "" {
		title = "Top News"
	}

	var b strings.Builder
	if err := digestTemplate.Execute(&b, digestData{Title: title, Articles: articles}); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return b.String(), nil
}
