package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/lululau/calgrid/internal/calendar"
	"github.com/lululau/calgrid/internal/config"
	"github.com/lululau/calgrid/internal/holidays"
	"github.com/lululau/calgrid/internal/render"
	"github.com/lululau/calgrid/internal/state"
	"github.com/lululau/calgrid/internal/tui"
)

var (
	yearFlag           = flag.Bool("y", false, "show the whole year")
	plain              = flag.Bool("n", false, "render once and exit (non-interactive)")
	weekFlag           = flag.Bool("w", false, "start in week mode")
	configFile         = flag.String("c", "", "config file path")
	configFileLong     = flag.String("config", "", "config file path")
	updateHolidays     = flag.Bool("u", false, "download the latest holiday data")
	updateHolidaysLong = flag.Bool("update-holidays", false, "download the latest holiday data")
	holidaysFile       = flag.String("holidays-file", "", "holiday data file (for debugging)")
	noColor            = flag.Bool("N", false, "disable all colors")
	noColorLong        = flag.Bool("no-color", false, "disable all colors")
	lunarFlag          = flag.Bool("l", false, "show lunar dates and solar terms")
	localeFlag         = flag.String("locale", "", "locale for titles and weekdays, e.g. ko, en-US, zh")
	logFile            = flag.String("log-file", "", "write logs to this file")
	controlled         = flag.Bool("controlled", false, "let a host value own the selection (demo)")
)

// logLevel follows log_level across config reloads.
var logLevel slog.LevelVar

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [options] [year] [month]\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), `
  no arguments   current month
  -y             current year
  9              September of this year
  1983           the year 1983
  2012 12        December 2012
  -y 9           the whole year 9 AD

options:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := firstNonEmpty(*configFile, *configFileLong)
	if cfgPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if cfg == nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "warning: could not write default config:", err)
	}
	applyFlags(cfg)

	req, err := parseRequest(*yearFlag, flag.Args(), time.Now())
	if err != nil {
		return err
	}
	if *weekFlag && req.Mode == calendar.ModeMonth {
		req.Mode = calendar.ModeWeek
	}
	interactive := !*plain && req.Mode != calendar.ModeYear

	closeLog, err := setupLogging(cfg, interactive)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *updateHolidays || *updateHolidaysLong {
		return downloadHolidays(ctx, cfg)
	}

	table, cacheValid := loadHolidays(cfg)
	svc, renderer, err := build(cfg, table)
	if err != nil {
		return err
	}

	if !interactive {
		return render.RunPlain(render.PlainOptions{
			Service:           svc,
			Request:           req,
			Locale:            renderer.Locale,
			NoColor:           cfg.NoColor,
			HolidayCacheValid: cacheValid,
		})
	}

	mode := cfg.Mode()
	if req.Mode == calendar.ModeWeek {
		mode = state.ModeWeek
	}

	g, gctx := errgroup.WithContext(ctx)
	p := tui.NewProgram(tui.Options{
		Service:           svc,
		Renderer:          renderer,
		Request:           req,
		Mode:              mode,
		Controlled:        *controlled,
		HolidayCacheValid: cacheValid,
		Logger:            slog.Default(),
	}, tea.WithContext(gctx))

	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return tui.RunClock(gctx, cfg.TodayRefresh, p.Send)
	})
	g.Go(func() error {
		return config.Watch(gctx, cfgPath, func(next *config.Config) {
			msg, err := reload(next, table)
			if err != nil {
				slog.Warn("ignoring config reload", "err", err)
				return
			}
			p.Send(msg)
		})
	})
	return g.Wait()
}

// applyFlags lets explicit flags win over the config file.
func applyFlags(cfg *config.Config) {
	if *noColor || *noColorLong {
		cfg.NoColor = true
	}
	if *lunarFlag {
		cfg.ShowLunar = true
	}
	if *localeFlag != "" {
		cfg.Locale = *localeFlag
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if *holidaysFile != "" {
		cfg.HolidaysFile = *holidaysFile
	}
	if *weekFlag {
		cfg.StartMode = state.ModeWeek.String()
	}
}

// reload applies a changed config file. Keys documented as startup-only on
// config.Config keep their running values.
func reload(next *config.Config, table holidays.Table) (tui.ReloadMsg, error) {
	applyFlags(next)
	svc, renderer, err := build(next, table)
	if err != nil {
		return tui.ReloadMsg{}, err
	}
	logLevel.Set(next.SlogLevel())
	return tui.ReloadMsg{Service: svc, Renderer: renderer}, nil
}

func build(cfg *config.Config, table holidays.Table) (*calendar.Service, render.Renderer, error) {
	locales, err := cfg.LocaleTable()
	if err != nil {
		return nil, render.Renderer{}, err
	}
	lc, tag := locales.Lookup(cfg.Locale)
	slog.Debug("locale selected", "requested", cfg.Locale, "matched", tag.String())

	opts := []calendar.Option{calendar.WithLunar(cfg.ShowLunar)}
	if table != nil {
		opts = append(opts, calendar.WithHolidays(table))
	}
	return calendar.NewService(opts...), render.New(lc, cfg.NoColor), nil
}

// setupLogging configures the global slog logger. The TUI owns the terminal,
// so interactive runs log only to a file and stay silent without one.
func setupLogging(cfg *config.Config, interactive bool) (func(), error) {
	var w io.Writer = os.Stderr
	closer := func() {}

	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return closer, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closer = func() { f.Close() }
	case interactive:
		w = io.Discard
	}

	logLevel.Set(cfg.SlogLevel())
	opts := &slog.HandlerOptions{Level: &logLevel}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
	return closer, nil
}

func downloadHolidays(ctx context.Context, cfg *config.Config) error {
	dest := cfg.HolidaysFile
	if dest == "" {
		p, err := holidays.CachePath()
		if err != nil {
			return err
		}
		dest = p
	}
	// The progress view prints the summary itself.
	_, err := holidays.Download(ctx, holidays.Downloader{
		URL:    cfg.HolidaysURL,
		Dest:   dest,
		Logger: slog.Default(),
	})
	return err
}

// loadHolidays returns the holiday table and whether it is fresh enough to
// trust. An explicit file is always trusted.
func loadHolidays(cfg *config.Config) (holidays.Table, bool) {
	if cfg.HolidaysFile != "" {
		table, err := holidays.LoadFromFile(cfg.HolidaysFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not load holiday file %s: %v\n", cfg.HolidaysFile, err)
			return nil, false
		}
		return table, true
	}

	path, err := holidays.CachePath()
	if err != nil {
		return nil, false
	}
	valid, err := holidays.IsCacheValid(path, time.Now())
	if err != nil || !valid {
		return nil, false
	}
	table, err := holidays.LoadFromFile(path)
	if err != nil {
		slog.Warn("holiday cache unreadable", "path", path, "err", err)
		return nil, false
	}
	return table, true
}

func parseRequest(showYear bool, args []string, now time.Time) (calendar.Request, error) {
	year := now.Year()
	month := int(now.Month())
	day := now.Day()

	switch len(args) {
	case 0:
		// defaults
	case 1:
		if showYear {
			val, err := parseNumber(args[0], "year")
			if err != nil {
				return calendar.Request{}, err
			}
			year = val
		} else {
			val, err := parseNumber(args[0], "month/year")
			if err != nil {
				return calendar.Request{}, err
			}
			if val >= 1 && val <= 12 {
				month = val
			} else {
				year = val
				showYear = true
			}
		}
		day = 0
	case 2:
		if showYear {
			return calendar.Request{}, errors.New("-y takes at most one year argument")
		}
		y, err := parseNumber(args[0], "year")
		if err != nil {
			return calendar.Request{}, err
		}
		m, err := parseNumber(args[1], "month")
		if err != nil {
			return calendar.Request{}, err
		}
		if m < 1 || m > 12 {
			return calendar.Request{}, fmt.Errorf("month must be between 1 and 12 (got %d)", m)
		}
		year = y
		month = m
		day = 0
	default:
		return calendar.Request{}, errors.New("too many arguments, see --help")
	}

	req := calendar.Request{
		Year:  year,
		Month: month,
		Day:   day,
		Mode:  calendar.ModeMonth,
	}
	if showYear {
		req.Mode = calendar.ModeYear
	}
	return req.Normalize(), nil
}

func parseNumber(value string, field string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as %s", value, field)
	}
	return n, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
