package tui

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lululau/calgrid/internal/calendar"
	"github.com/lululau/calgrid/internal/dateutil"
	"github.com/lululau/calgrid/internal/locale"
	"github.com/lululau/calgrid/internal/render"
	"github.com/lululau/calgrid/internal/state"
)

type inputMode int

const (
	inputNone inputMode = iota
	inputYear
	inputMonth
)

// Options seeds the interactive model.
type Options struct {
	Service  *calendar.Service
	Renderer render.Renderer
	// Request.Anchor is the initially selected date.
	Request calendar.Request
	Mode    state.Mode
	// Controlled hands the selection to a host value that accepts every
	// change and is fed back before each render.
	Controlled        bool
	HolidayCacheValid bool
	Logger            *slog.Logger
}

// ReloadMsg swaps the service and renderer after a config change.
type ReloadMsg struct {
	Service  *calendar.Service
	Renderer render.Renderer
}

// host stands in for the embedding application when the selection is
// controlled.
type host struct {
	value   time.Time
	changes int
}

// Model is the Bubble Tea model of the expandable calendar.
type Model struct {
	svc      *calendar.Service
	renderer render.Renderer
	cal      *state.Expandable
	host     *host
	keys     keyMap
	help     help.Model
	input    textinput.Model
	mode     inputMode
	status   string
	width    int
	logger   *slog.Logger

	// neighbours shows the previous and next periods beside the current one.
	neighbours bool

	holidayCacheValid bool
}

// New builds the model.
func New(opts Options) Model {
	if opts.Service == nil {
		opts.Service = calendar.NewService()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Renderer.Locale.MonthYearFormat == "" {
		opts.Renderer = render.New(locale.DefaultTable()[locale.Default], opts.Renderer.NoColor)
	}

	anchor := opts.Request.Anchor()
	stateOpts := state.Options{Logger: opts.Logger}
	var h *host
	if opts.Controlled {
		h = &host{value: anchor}
		stateOpts.ControlledDate = &anchor
		stateOpts.OnDateChange = func(d time.Time) {
			h.value = d
			h.changes++
		}
	} else {
		stateOpts.DefaultDate = &anchor
	}
	cal := state.NewExpandable(stateOpts)
	if opts.Mode != cal.Mode() {
		cal.SetMode(opts.Mode)
	}

	ti := textinput.New()
	ti.CharLimit = 16
	ti.Prompt = "> "

	return Model{
		svc:               opts.Service,
		renderer:          opts.Renderer,
		cal:               cal,
		host:              h,
		keys:              defaultKeyMap(),
		help:              help.New(),
		input:             ti,
		logger:            opts.Logger,
		holidayCacheValid: opts.HolidayCacheValid,
	}
}

// NewProgram wraps the model in a program on the alternate screen. Callers
// keep the program to Send TickMsg and ReloadMsg from other goroutines.
func NewProgram(opts Options, progOpts ...tea.ProgramOption) *tea.Program {
	return tea.NewProgram(New(opts), append([]tea.ProgramOption{tea.WithAltScreen()}, progOpts...)...)
}

// State exposes the controller snapshot.
func (m Model) State() state.State {
	return m.cal.Snapshot()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	case TickMsg:
		m.logger.Debug("redraw for date change", "today", m.svc.Today().Format(time.DateOnly))
	case ReloadMsg:
		if msg.Service != nil {
			m.svc = msg.Service
		}
		m.renderer = msg.Renderer
		m.status = "config reloaded"
	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.handleInputKey(msg)
		}
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}
	}
	m.reconcile()
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	selected := m.cal.SelectedDate()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.PrevPeriod):
		m.cal.PrevPeriod()
	case key.Matches(msg, m.keys.NextPeriod):
		m.cal.NextPeriod()
	case key.Matches(msg, m.keys.PrevYear):
		m.cal.ShowDate(dateutil.AddMonths(m.cal.CurrentPeriod(), -12))
	case key.Matches(msg, m.keys.NextYear):
		m.cal.ShowDate(dateutil.AddMonths(m.cal.CurrentPeriod(), 12))
	case key.Matches(msg, m.keys.PrevDay):
		m.cal.SelectDate(dateutil.AddDays(selected, -1))
	case key.Matches(msg, m.keys.NextDay):
		m.cal.SelectDate(dateutil.AddDays(selected, 1))
	case key.Matches(msg, m.keys.PrevWeek):
		m.cal.SelectDate(dateutil.AddWeeks(selected, -1))
	case key.Matches(msg, m.keys.NextWeek):
		m.cal.SelectDate(dateutil.AddWeeks(selected, 1))
	case key.Matches(msg, m.keys.ToggleMode):
		m.cal.ToggleMode()
	case key.Matches(msg, m.keys.Neighbours):
		m.neighbours = !m.neighbours
	case key.Matches(msg, m.keys.Today):
		m.cal.SelectDate(m.svc.Today())
	case key.Matches(msg, m.keys.InputYear):
		m.activateInput(inputYear, "2024 or 2024 2")
		return nil
	case key.Matches(msg, m.keys.InputMonth):
		m.activateInput(inputMonth, "1-12")
		return nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	default:
		return nil
	}
	m.status = ""
	return nil
}

// reconcile plays the host's part of the controlled contract: feed the
// current value back before the next render.
func (m *Model) reconcile() {
	if m.host == nil {
		return
	}
	if ev, changed := m.cal.Reconcile(m.host.value); changed {
		m.logger.Debug("period follows controlled date",
			"from", ev.From.Format(time.DateOnly),
			"to", ev.To.Format(time.DateOnly),
		)
	}
}

func (m Model) View() string {
	if m.mode != inputNone {
		return m.inputView()
	}

	body, err := m.renderCalendar()
	status := m.status
	if err != nil {
		status = err.Error()
	}

	sb := strings.Builder{}
	sb.WriteString(body)
	sb.WriteString("\n")
	sb.WriteString(m.selectionLine())
	sb.WriteString("\n\n")
	sb.WriteString(m.help.View(m.keys))
	if status != "" {
		sb.WriteString("\n")
		sb.WriteString(m.renderer.Styles.Workday.Render(status))
	}
	if !m.holidayCacheValid {
		sb.WriteString("\n\n")
		sb.WriteString(m.renderer.CacheWarning())
	}
	return sb.String()
}

func (m Model) renderCalendar() (string, error) {
	if m.neighbours {
		return m.renderPages()
	}
	grid, err := m.cal.Grid(m.svc)
	if err != nil {
		return "", err
	}
	return m.renderGrid(grid)
}

// renderPages lays out the previous, current and next periods side by side,
// wrapping when the terminal is too narrow.
func (m Model) renderPages() (string, error) {
	pages, err := m.cal.Pages(m.svc)
	if err != nil {
		return "", err
	}
	blocks := make([]render.Block, 0, len(pages))
	for _, grid := range pages {
		block, err := m.gridBlock(grid)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, block)
	}
	width := m.width
	if width <= 0 {
		width = 100
	}
	return render.Layout(blocks, width), nil
}

func (m Model) renderGrid(grid calendar.Grid) (string, error) {
	block, err := m.gridBlock(grid)
	if err != nil {
		return "", err
	}
	return block.String(), nil
}

func (m Model) gridBlock(grid calendar.Grid) (render.Block, error) {
	if m.cal.Mode() == state.ModeWeek {
		return m.renderer.Week(grid)
	}
	return m.renderer.Month(grid), nil
}

func (m Model) selectionLine() string {
	selected := m.cal.SelectedDate()
	parts := []string{selected.Format(time.DateOnly)}
	if m.host != nil {
		parts = append(parts, "(controlled, "+strconv.Itoa(m.host.changes)+" changes)")
	}
	grid, err := m.cal.Grid(m.svc)
	if d, ok := grid.Selected(); err == nil && ok {
		if label := d.SecondaryLabel(); label != "" {
			parts = append(parts, label)
		}
		if d.HolidayInfo != nil && d.HolidayInfo.Name != "" {
			parts = append(parts, d.HolidayInfo.Name)
		}
	}
	return m.renderer.Styles.Dim.Render(strings.Join(parts, "  "))
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = inputNone
		m.status = ""
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.applyInput()
		m.reconcile()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) activateInput(mode inputMode, placeholder string) {
	m.mode = mode
	m.input.SetValue("")
	m.input.Placeholder = placeholder
	m.input.CursorEnd()
	m.input.Focus()
	m.status = ""
}

func (m *Model) applyInput() {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		m.status = "enter a number"
		return
	}
	period := m.cal.CurrentPeriod()
	year, month := period.Year(), period.Month()

	switch m.mode {
	case inputYear:
		fields := strings.Fields(value)
		if len(fields) > 2 {
			m.status = "format: year or year month"
			return
		}
		y, err := strconv.Atoi(fields[0])
		if err != nil {
			m.status = "invalid year"
			return
		}
		year = y
		if len(fields) == 2 {
			mo, err := strconv.Atoi(fields[1])
			if err != nil || mo < 1 || mo > 12 {
				m.status = "month must be between 1 and 12"
				return
			}
			month = time.Month(mo)
		}
	case inputMonth:
		mo, err := strconv.Atoi(value)
		if err != nil || mo < 1 || mo > 12 {
			m.status = "month must be between 1 and 12"
			return
		}
		month = time.Month(mo)
	}

	if _, err := calendar.WeeksInMonth(year, month); err != nil {
		m.status = err.Error()
		return
	}
	m.cal.ShowDate(time.Date(year, month, 1, 0, 0, 0, 0, time.Local))
	m.status = ""
	m.mode = inputNone
	m.input.Blur()
}

func (m Model) inputView() string {
	var label string
	switch m.mode {
	case inputYear:
		label = "Go to year [month] (enter to confirm, esc to cancel)"
	case inputMonth:
		label = "Go to month 1-12 (enter to confirm, esc to cancel)"
	default:
		return ""
	}
	view := lipgloss.NewStyle().Bold(!m.renderer.NoColor).Render(label) + "\n\n" + m.input.View()
	if m.status != "" {
		view += "\n\n" + m.renderer.Styles.Workday.Render(m.status)
	}
	return view
}
