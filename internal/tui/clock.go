package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"
)

// TickMsg asks the model to re-render because the date may have rolled over.
type TickMsg struct {
	Now time.Time
}

// RunClock sends a TickMsg on every activation of spec (a standard 5-field
// cron expression, "0 0 * * *" by default) until ctx is done.
func RunClock(ctx context.Context, spec string, send func(tea.Msg)) error {
	c := cron.New(cron.WithLocation(time.Local))
	if _, err := c.AddFunc(spec, func() {
		now := time.Now()
		slog.Debug("today refresh", "now", now.Format(time.DateTime))
		send(TickMsg{Now: now})
	}); err != nil {
		return fmt.Errorf("invalid today_refresh %q: %w", spec, err)
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
