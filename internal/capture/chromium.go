// Package capture screenshots the HTML month page with headless Chromium.
package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"minical/internal/config"
	"minical/internal/convert"
	appLog "minical/internal/log"
	"minical/internal/model"
)

// readySelector matches the page root once the month has been rendered.
const readySelector = `[data-ready="true"]`

type Options struct {
	// URL of the month page, e.g. "http://127.0.0.1:4000/calendar?year=2024&month=3".
	URL        string
	OutputPath string
	Width      int
	Height     int
	Timeout    time.Duration
	// TriColor reduces the screenshot to black, white and red for
	// tri-colour e-paper panels.
	TriColor bool
	// Username and Password are sent as HTTP Basic Auth when set.
	Username string
	Password string
}

// OptionsFrom fills viewport, timeout and basic auth credentials from cfg.
func OptionsFrom(cfg *config.Config, pageURL, out string) Options {
	opts := Options{
		URL:        pageURL,
		OutputPath: out,
		Width:      cfg.Capture.Width,
		Height:     cfg.Capture.Height,
		Timeout:    time.Duration(cfg.Capture.TimeoutSeconds) * time.Second,
	}
	if cfg.BasicAuthEnabled() {
		opts.Username = cfg.BasicAuth.Username
		opts.Password = cfg.BasicAuth.Password
	}
	return opts
}

func (o Options) authorization() string {
	if o.Username == "" {
		return ""
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(o.Username+":"+o.Password))
}

func (o *Options) normalize() error {
	if o.URL == "" {
		return errors.New("capture: URL is required")
	}
	if o.OutputPath == "" {
		return errors.New("capture: output path is required")
	}
	def := config.DefaultConfig().Capture
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(def.TimeoutSeconds) * time.Second
	}
	return nil
}

// MonthURL points base (a server root such as "http://127.0.0.1:4000") at
// the month page for m.
func MonthURL(base string, m model.Month) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/calendar")
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("year", strconv.Itoa(m.Year))
	q.Set("month", strconv.Itoa(int(m.Month)))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// preflight fetches the page once with the same credentials so that auth
// and routing failures surface immediately rather than as a timeout waiting
// for data-ready.
func preflight(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	if auth := opts.authorization(); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("capture: server not reachable: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized && opts.Username == "":
		return fmt.Errorf("capture: %s requires basic auth; set basic_auth in the config", opts.URL)
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("capture: %s rejected the configured basic_auth credentials", opts.URL)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("capture: GET %s: %s", opts.URL, resp.Status)
	}
	return nil
}

// MonthPNG navigates to opts.URL, waits for the page to report data-ready
// and writes a full-page PNG screenshot to opts.OutputPath.
func MonthPNG(parentCtx context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}
	if err := preflight(parentCtx, opts); err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{}
	if auth := opts.authorization(); auth != "" {
		tasks = append(tasks,
			network.Enable(),
			network.SetExtraHTTPHeaders(network.Headers{"Authorization": auth}),
		)
	}
	tasks = append(tasks,
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(readySelector, chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	)

	start := time.Now()
	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if opts.TriColor {
		reduced, err := convert.TriColorPNG(png)
		if err != nil {
			return fmt.Errorf("capture: tri-colour conversion failed: %w", err)
		}
		png = reduced
	}

	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	appLog.Info("month captured", "path", opts.OutputPath, "bytes", len(png), "duration", time.Since(start))
	return nil
}
