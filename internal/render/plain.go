package render

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/lululau/calgrid/internal/calendar"
	"github.com/lululau/calgrid/internal/dateutil"
	"github.com/lululau/calgrid/internal/locale"
)

// PlainOptions controls how the non-interactive renderer behaves.
type PlainOptions struct {
	Writer            io.Writer
	Service           *calendar.Service
	Request           calendar.Request
	Locale            locale.Config
	NoColor           bool
	Width             int
	HolidayCacheValid bool
}

// RunPlain renders the requested view exactly once.
func RunPlain(opts PlainOptions) error {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.Service == nil {
		opts.Service = calendar.NewService()
	}
	if opts.Locale.MonthYearFormat == "" {
		opts.Locale = locale.DefaultTable()[locale.Default]
	}
	r := New(opts.Locale, opts.NoColor)

	width := opts.Width
	if width == 0 {
		width = DetectWidth()
	}

	output, err := renderRequest(r, opts.Service, opts.Request.Normalize(), width)
	if err != nil {
		return err
	}
	if output == "" {
		return nil
	}
	if _, err := fmt.Fprintln(opts.Writer, output); err != nil {
		return err
	}

	if opts.Service.HasHolidayData() {
		if _, err := fmt.Fprintln(opts.Writer, "\n"+r.Legend()); err != nil {
			return err
		}
	}
	if !opts.HolidayCacheValid {
		_, err = fmt.Fprintln(opts.Writer, "\n"+r.CacheWarning())
	}
	return err
}

// DetectWidth tries to determine the terminal width, falling back to 100 cols.
func DetectWidth() int {
	fd := os.Stdout.Fd()
	if isatty.IsTerminal(fd) {
		if w, _, err := term.GetSize(int(fd)); err == nil {
			return w
		}
	}
	return 100
}

func renderRequest(r Renderer, svc *calendar.Service, req calendar.Request, width int) (string, error) {
	switch req.Mode {
	case calendar.ModeYear:
		grids, err := svc.Year(req.Year)
		if err != nil {
			return "", err
		}
		return r.Year(grids, width), nil
	case calendar.ModeWeek:
		anchor := req.Anchor()
		block, err := r.Week(svc.WeekGrid(dateutil.WeekStart(anchor), anchor))
		if err != nil {
			return "", err
		}
		return block.String(), nil
	default:
		var selected *time.Time
		if req.Day > 0 {
			anchor := req.Anchor()
			selected = &anchor
		}
		grid, err := svc.MonthGrid(req.Year, time.Month(req.Month), selected)
		if err != nil {
			return "", err
		}
		return r.Month(grid).String(), nil
	}
}
