// Package capture takes PNG snapshots of the dashboard with headless Chromium.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	DefaultWidth   = 1280
	DefaultHeight  = 800
	DefaultTimeout = 30 * time.Second
	// ReadySelector matches the alarm panel once the page has rendered its
	// first snapshot.
	ReadySelector = `#alarms[data-ready="true"]`
)

// Options defines a dashboard snapshot.
type Options struct {
	// URL of the dashboard, e.g. "http://127.0.0.1:8080/".
	URL string
	// OutputPath receives the PNG.
	OutputPath string
	// Selector, when set, captures only that element; otherwise the full page.
	Selector string
	Width    int
	Height   int
	Timeout  time.Duration
}

func (o *Options) normalize() error {
	if o.URL == "" {
		return errors.New("capture: URL is required")
	}
	if o.OutputPath == "" {
		return errors.New("capture: OutputPath is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return nil
}

// tasks returns the chromedp actions for opts, writing the image into buf.
func (o Options) tasks(buf *[]byte) chromedp.Tasks {
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(o.Width), int64(o.Height)),
		chromedp.Navigate(o.URL),
		chromedp.WaitVisible(ReadySelector, chromedp.ByQuery),
	}
	if o.Selector != "" {
		return append(tasks, chromedp.Screenshot(o.Selector, buf, chromedp.NodeVisible, chromedp.ByQuery))
	}
	return append(tasks, chromedp.FullScreenshot(buf, 100))
}

// Snapshot loads the dashboard, waits until the alarm panel reports ready
// and writes a PNG of the page or of opts.Selector.
func Snapshot(parent context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parent)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	if err := chromedp.Run(ctx, opts.tasks(&png)); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}
	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	return nil
}
