package resources

import (
	"context"
	"fmt"
	"html"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// PDFRenderer prints an HTML file on disk to PDF bytes.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, htmlPath string) ([]byte, error)
}

const (
	a4WidthIn  = 8.27
	a4HeightIn = 11.69
	mmPerInch  = 25.4
)

func mm(v float64) float64 { return v / mmPerInch }

type ChromeOptions struct {
	ExecPath string
	Company  string
	Timeout  time.Duration
}

// ChromePDF drives one headless Chrome; each RenderPDF call opens a new tab,
// so it can be shared by several workers.
type ChromePDF struct {
	browser       context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
	footer        string
	timeout       time.Duration
}

func NewChromePDF(ctx context.Context, opt ChromeOptions) (*ChromePDF, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.DisableGPU)
	if opt.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(opt.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browser, cancelBrowser := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browser); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &ChromePDF{
		browser:       browser,
		cancelAlloc:   cancelAlloc,
		cancelBrowser: cancelBrowser,
		footer:        footerTemplate(opt.Company),
		timeout:       timeout,
	}, nil
}

func (c *ChromePDF) Close() {
	c.cancelBrowser()
	c.cancelAlloc()
}

func (c *ChromePDF) RenderPDF(ctx context.Context, htmlPath string) ([]byte, error) {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return nil, err
	}
	tab, cancelTab := chromedp.NewContext(c.browser)
	defer cancelTab()
	tab, cancelTimeout := context.WithTimeout(tab, c.timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var buf []byte
	err = chromedp.Run(tab,
		chromedp.Navigate("file://"+filepath.ToSlash(abs)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4WidthIn).
				WithPaperHeight(a4HeightIn).
				WithMarginTop(mm(18)).
				WithMarginBottom(mm(18)).
				WithMarginLeft(mm(14)).
				WithMarginRight(mm(14)).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate(headerTemplate).
				WithFooterTemplate(c.footer).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print %s: %w", htmlPath, err)
	}
	return buf, nil
}

// Chrome falls back to its own date/title header when the template is empty.
const headerTemplate = `<div style="font-size:1px"></div>`

func footerTemplate(company string) string {
	return `<div style="font-size:8px;width:100%;padding:0 14mm;display:flex;justify-content:space-between;color:#6b7280;">` +
		`<span>` + html.EscapeString(company) + `</span>` +
		`<span>Page <span class="pageNumber"></span> of <span class="totalPages"></span></span>` +
		`</div>`
}
