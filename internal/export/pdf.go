package export

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/jonathan/resume-tailor/internal/fetch"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

var (
	markdown     = goldmark.New(goldmark.WithExtensions(extension.GFM))
	pageTemplate = template.Must(template.ParseFS(templateFiles, "templates/resume.html.tmpl"))
)

// PrintFunc prints an HTML document to PDF bytes.
type PrintFunc func(ctx context.Context, html string) ([]byte, error)

// RenderHTML converts Markdown to a standalone, print-styled HTML page.
func RenderHTML(text string) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(text), &body); err != nil {
		return "", &RenderError{Message: "failed to convert markdown", Cause: err}
	}

	var out bytes.Buffer
	if err := pageTemplate.Execute(&out, struct{ Body template.HTML }{template.HTML(body.String())}); err != nil {
		return "", &RenderError{Message: "failed to execute template", Cause: err}
	}
	return out.String(), nil
}

// ChromePrinter prints through headless Chrome on US Letter paper.
// Requires Chrome/Chromium to be installed on the system.
func ChromePrinter(timeout time.Duration) PrintFunc {
	return func(ctx context.Context, html string) ([]byte, error) {
		browserCtx, cancel := fetch.NewBrowserContext(ctx, timeout)
		defer cancel()

		var pdf []byte
		err := chromedp.Run(browserCtx,
			chromedp.Navigate("about:blank"),
			chromedp.ActionFunc(func(ctx context.Context) error {
				tree, err := page.GetFrameTree().Do(ctx)
				if err != nil {
					return err
				}
				return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
			}),
			chromedp.ActionFunc(func(ctx context.Context) error {
				var err error
				pdf, _, err = page.PrintToPDF().
					WithPrintBackground(true).
					WithPaperWidth(8.5).
					WithPaperHeight(11).
					WithMarginTop(0.75).
					WithMarginBottom(0.75).
					WithMarginLeft(0.75).
					WithMarginRight(0.75).
					Do(ctx)
				return err
			}),
		)
		if err != nil {
			return nil, &RenderError{Message: "failed to print pdf", Cause: err}
		}
		return pdf, nil
	}
}
