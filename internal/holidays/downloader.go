package holidays

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultURL serves holiday data in the format Parse understands.
const DefaultURL = "https://raw.githubusercontent.com/lululau/lucal/main/holidays.json"

const progressInterval = 100 * time.Millisecond

// Result describes a finished download.
type Result struct {
	Path    string
	Size    int64
	ModTime time.Time
	Years   *YearRange
}

// Downloader fetches the holiday file into the cache.
type Downloader struct {
	URL    string
	Dest   string
	Client *http.Client
	Logger *slog.Logger
}

// Fetch downloads URL to Dest. The file is validated before it replaces the
// previous copy, so a broken response never clobbers a good cache.
// onProgress may be nil; total is -1 when the server sends no length.
func (d Downloader) Fetch(ctx context.Context, onProgress func(done, total int64)) (Result, error) {
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	url := d.URL
	if url == "" {
		url = DefaultURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to start download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("HTTP %s", resp.Status)
	}

	var buf bytes.Buffer
	pw := &progressWriter{total: resp.ContentLength, report: onProgress}
	if _, err := io.Copy(&buf, io.TeeReader(resp.Body, pw)); err != nil {
		return Result{}, fmt.Errorf("failed to read body: %w", err)
	}
	pw.flush()

	table, err := Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return Result{}, err
	}
	if err := writeAtomic(d.Dest, buf.Bytes()); err != nil {
		return Result{}, err
	}
	info, err := os.Stat(d.Dest)
	if err != nil {
		return Result{}, fmt.Errorf("failed to stat file: %w", err)
	}

	res := Result{Path: d.Dest, Size: info.Size(), ModTime: info.ModTime()}
	if years, err := table.Years(); err == nil {
		res.Years = &years
	}
	logger.Info("holidays downloaded", "path", res.Path, "bytes", res.Size)
	return res, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".holidays-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

type progressWriter struct {
	done   int64
	total  int64
	last   time.Time
	report func(done, total int64)
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.done += int64(len(p))
	if pw.report != nil && time.Since(pw.last) >= progressInterval {
		pw.last = time.Now()
		pw.report(pw.done, pw.total)
	}
	return len(p), nil
}

func (pw *progressWriter) flush() {
	if pw.report != nil {
		pw.report(pw.done, pw.total)
	}
}

type progressMsg struct {
	done  int64
	total int64
}

type finishedMsg struct {
	result Result
	err    error
}

type downloadModel struct {
	url      string
	bar      progress.Model
	done     int64
	total    int64
	finished bool
	result   Result
	err      error
}

func (m downloadModel) Init() tea.Cmd {
	return nil
}

func (m downloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.finished {
			return m, tea.Quit
		}
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.err = context.Canceled
			return m, tea.Quit
		}
	case progressMsg:
		m.done, m.total = msg.done, msg.total
		if m.total > 0 {
			return m, m.bar.SetPercent(float64(m.done) / float64(m.total))
		}
	case finishedMsg:
		m.finished = true
		m.result, m.err = msg.result, msg.err
		if m.err == nil {
			return m, m.bar.SetPercent(1)
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m downloadModel) View() string {
	var sb strings.Builder
	if m.finished && m.err != nil {
		fmt.Fprintf(&sb, "Download failed: %v\n\n", m.err)
		fmt.Fprintf(&sb, "You can fetch the file by hand:\n  1. open %s\n  2. save it as %s\n\n", m.url, m.result.Path)
		sb.WriteString("Press any key to exit...\n")
		return sb.String()
	}
	if m.finished {
		fmt.Fprintf(&sb, "Downloaded!\n\nSize:    %s\nUpdated: %s\nPath:    %s\n",
			formatBytes(m.result.Size), m.result.ModTime.Format("2006-01-02 15:04:05"), m.result.Path)
		if y := m.result.Years; y != nil {
			fmt.Fprintf(&sb, "Years:   %d - %d (%d years)\n", y.MinYear, y.MaxYear, y.Count)
		}
		sb.WriteString("\nPress any key to exit...\n")
		return sb.String()
	}

	sb.WriteString("Downloading holiday data...\n\n")
	sb.WriteString(m.bar.View())
	sb.WriteString("\n")
	if m.total > 0 {
		fmt.Fprintf(&sb, "%s / %s\n", formatBytes(m.done), formatBytes(m.total))
	} else {
		fmt.Fprintf(&sb, "%s\n", formatBytes(m.done))
	}
	sb.WriteString("\nPress Ctrl+C to cancel\n")
	return sb.String()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for q := n / unit; q >= unit; q /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Download runs Fetch behind a progress bar on the terminal.
func Download(ctx context.Context, d Downloader) (Result, error) {
	if d.Dest == "" {
		path, err := CachePath()
		if err != nil {
			return Result{}, err
		}
		d.Dest = path
	}
	if d.URL == "" {
		d.URL = DefaultURL
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := downloadModel{
		url:    d.URL,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
		result: Result{Path: d.Dest},
	}
	p := tea.NewProgram(m, tea.WithContext(ctx))
	go func() {
		res, err := d.Fetch(ctx, func(done, total int64) {
			p.Send(progressMsg{done: done, total: total})
		})
		if err != nil {
			res.Path = d.Dest
		}
		p.Send(finishedMsg{result: res, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return Result{}, err
	}
	fm := final.(downloadModel)
	return fm.result, fm.err
}
