package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	appLog "minical/internal/log"
)

const maxFeedBytes = 10 << 20

var httpClient = &http.Client{Timeout: 15 * time.Second}

// ErrFeedTooLarge is returned when a remote feed exceeds maxFeedBytes.
var ErrFeedTooLarge = errors.New("ics feed too large")

// Read loads an ICS payload from an http(s) URL or a local file path.
func Read(ctx context.Context, src string) ([]byte, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return os.ReadFile(src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/calendar")

	appLog.Info("ics fetch start", "url", redactURL(src))
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", redactURL(src), resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxFeedBytes {
		return nil, fmt.Errorf("fetch %s: %w (limit %d bytes)", redactURL(src), ErrFeedTooLarge, maxFeedBytes)
	}
	appLog.Info("ics fetch success", "url", redactURL(src), "bytes", len(body))
	return body, nil
}

// redactURL keeps only scheme and host so feed tokens never reach the log.
func redactURL(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return "(redacted)"
	}
	return parsed.Scheme + "://" + parsed.Host + "/...(redacted)"
}
