package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed templates/mail.html
var mailTemplates embed.FS

var mailTemplate = template.Must(template.ParseFS(mailTemplates, "templates/mail.html"))

// EmailData populates the report email template
type EmailData struct {
	Subject        string
	Summary        string // plain text or Markdown from the analyst
	GeneratedAt    time.Time
	AreaCount      int
	AttachmentName string
	SheetURL       string
}

type emailView struct {
	EmailData
	Summary template.HTML
}

// RenderEmail renders the HTML body of the report email
func RenderEmail(data EmailData) (string, error) {
	view := emailView{
		EmailData: data,
		Summary:   SummaryToHTML(data.Summary),
	}

	var buf bytes.Buffer
	if err := mailTemplate.ExecuteTemplate(&buf, "mail.html", view); err != nil {
		return "", fmt.Errorf("render mail template: %w", err)
	}

	content := buf.String()
	if !strings.Contains(content, "</html>") {
		log.Printf("[Email] WARNING: rendered mail appears truncated - missing </html> tag")
	}
	return content, nil
}

// SummaryToHTML converts the analyst's answer to HTML. Single line breaks
// are kept, raw HTML is dropped and only http, https, mailto and relative
// links stay clickable.
func SummaryToHTML(summary string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.HardLineBreak)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML | html.Safelink})
	out := markdown.ToHTML([]byte(strings.ReplaceAll(summary, "\r\n", "\n")), p, r)
	return template.HTML(out)
}
