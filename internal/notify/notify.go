// Package notify delivers push notifications to Gotify and Pushover.
package notify

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/containrrr/shoutrrr"
	"github.com/rs/zerolog/log"

	"github.com/rcarmo/proxmox-zpool-monitoring/internal/config"
)

// Event is one outbound notification. Priority uses the Gotify 1-10 scale
// (1 informational, 8+ urgent); the Pushover channel maps it to that
// service's -1/0/1 buckets.
type Event struct {
	Title    string
	Message  string
	Priority int
}

// Dispatcher fans an event out to the enabled push channels. Channels are
// independently toggleable; an unconfigured channel is simply absent.
type Dispatcher struct {
	gotifyURL   string // shoutrrr service URL, "" disables the channel
	pushoverURL string
	dryRun      bool
}

// New builds a Dispatcher from channel configuration. A channel missing its
// credentials stays disabled even when toggled on.
func New(cfg *config.Settings, dryRun bool) *Dispatcher {
	d := &Dispatcher{dryRun: dryRun}

	if cfg.GotifyEnabled && cfg.GotifyURL != "" && cfg.GotifyToken != "" {
		u, err := gotifyServiceURL(cfg.GotifyURL, cfg.GotifyToken)
		if err != nil {
			log.Warn().Err(err).Msg("Invalid Gotify URL, channel disabled")
		} else {
			d.gotifyURL = u
		}
	}
	if cfg.PushoverEnabled && cfg.PushoverToken != "" && cfg.PushoverUserKey != "" {
		d.pushoverURL = fmt.Sprintf("pushover://shoutrrr:%s@%s", cfg.PushoverToken, cfg.PushoverUserKey)
	}
	return d
}

// Send delivers the event to every enabled channel. Delivery failures are
// logged, never returned: a lost notification must not fail the check run.
func (d *Dispatcher) Send(ev Event) {
	if d.dryRun {
		log.Info().Str("title", ev.Title).Int("priority", ev.Priority).Msg("dry-run, notification suppressed")
		return
	}
	if d.gotifyURL != "" {
		if err := send(d.gotifyURL, ev.Title, ev.Message, ev.Priority); err != nil {
			log.Error().Err(err).Str("title", ev.Title).Msg("Gotify notification failed")
		}
	}
	if d.pushoverURL != "" {
		if err := send(d.pushoverURL, ev.Title, ev.Message, PushoverPriority(ev.Priority)); err != nil {
			log.Error().Err(err).Str("title", ev.Title).Msg("Pushover notification failed")
		}
	}
}

// PushoverPriority maps the 1-10 scale onto Pushover's three buckets:
// informational becomes quiet (-1), urgent becomes high (1).
func PushoverPriority(level int) int {
	switch {
	case level <= 1:
		return -1
	case level >= 8:
		return 1
	}
	return 0
}

func send(serviceURL, title, message string, priority int) error {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("title", title)
	q.Set("priority", strconv.Itoa(priority))
	u.RawQuery = q.Encode()
	return shoutrrr.Send(u.String(), message)
}

// gotifyServiceURL converts a plain Gotify base URL (as handed out by the
// server UI, possibly ending in /message) and an app token into a shoutrrr
// service URL.
func gotifyServiceURL(rawURL, token string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("gotify URL %q has no host", rawURL)
	}

	path := strings.Trim(u.Path, "/")
	path = strings.TrimSuffix(path, "message")
	path = strings.Trim(path, "/")

	s := "gotify://" + u.Host
	if path != "" {
		s += "/" + path
	}
	s += "/" + token
	if u.Scheme == "http" {
		s += "?disabletls=yes"
	}
	return s, nil
}
