// Package render lays out CV text as a printable HTML page and prints it to PDF with headless Chrome.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/jonathan/cv-optimizer/internal/outline"
)

// DefaultFileName is used when the caller does not name the download.
const DefaultFileName = "optimized-cv"

// DefaultTimeout bounds a single print, including browser start.
const DefaultTimeout = 60 * time.Second

//go:embed templates/*.tmpl
var templateFiles embed.FS

var cvTemplate = template.Must(template.ParseFS(templateFiles, "templates/cv.html.tmpl"))

type view struct {
	Name string
	Lead *outline.Section
	Body []outline.Section
}

// HTML renders a parsed CV as a standalone A4 page.
func HTML(doc *outline.Document) (string, error) {
	v := view{Name: doc.Name(), Body: doc.Sections}
	if lead := doc.Leading(); lead != nil {
		v.Lead = lead
		v.Body = doc.Sections[1:]
	}

	var buf bytes.Buffer
	if err := cvTemplate.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("failed to render CV template: %w", err)
	}
	return buf.String(), nil
}

// Printer converts an HTML document into PDF bytes.
type Printer interface {
	PrintPDF(ctx context.Context, html string) ([]byte, error)
}

// ChromePrinter prints with a fresh headless Chrome per call.
type ChromePrinter struct {
	// ExecPath overrides the browser binary. Empty uses CHROME_PATH or the chromedp lookup.
	ExecPath string
	Timeout  time.Duration
}

// NewChromePrinter returns a printer honouring CHROME_PATH.
func NewChromePrinter() *ChromePrinter {
	return &ChromePrinter{ExecPath: os.Getenv("CHROME_PATH"), Timeout: DefaultTimeout}
}

// PrintPDF loads html into a blank tab and prints it on A4 paper.
func (p *ChromePrinter) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if p.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(p.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 is 8.27 x 11.69 inches.
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to print PDF: %w", err)
	}
	return pdf, nil
}

// Renderer turns CV text into a PDF.
type Renderer struct {
	parser  outline.Parser
	printer Printer
}

// NewRenderer wires a renderer. A nil parser uses the heuristic parser.
func NewRenderer(parser outline.Parser, printer Printer) *Renderer {
	if parser == nil {
		parser = outline.HeuristicParser{}
	}
	return &Renderer{parser: parser, printer: printer}
}

// Render parses text, lays it out and prints it.
func (r *Renderer) Render(ctx context.Context, text string) ([]byte, error) {
	html, err := HTML(r.parser.Parse(text))
	if err != nil {
		return nil, err
	}
	return r.printer.PrintPDF(ctx, html)
}

var unsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// FileName returns a download name ending in .pdf for the requested base name.
func FileName(name string) string {
	name = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(name), ".pdf"))
	name = strings.Trim(unsafeFileChars.ReplaceAllString(name, "-"), "-.")
	if name == "" {
		name = DefaultFileName
	}
	return name + ".pdf"
}
