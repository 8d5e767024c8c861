package rod

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// session is one headless Chrome process and its CDP connection.
// It lives for exactly one fetch.
type session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// closeTimeout bounds the CDP close of a session whose fetch context may
// already be done.
const closeTimeout = 5 * time.Second

// launch starts a new browser instance with stability flags. ctx bounds
// process start-up, any browser download, the CDP connection and every
// call made through the returned browser.
func launch(ctx context.Context, bin string) (*session, error) {
	l := launcher.New().
		Context(ctx).
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)
	if bin != "" {
		l = l.Bin(bin)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().Context(ctx).ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	return &session{browser: browser, launcher: l}, nil
}

// close shuts down the browser and kills the launched process.
// It is safe to call on a partially initialised session.
func (s *session) close() error {
	var err error
	if s.browser != nil {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		err = s.browser.Context(ctx).Close()
		cancel()
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher = nil
	}
	return err
}
