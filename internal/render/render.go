package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lululau/calgrid/internal/calendar"
	"github.com/lululau/calgrid/internal/locale"
	"github.com/lululau/calgrid/internal/textwidth"
)

const (
	minCellWidth = 4
	blockGap     = 2
)

// Styles holds every style a block uses.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Dim      lipgloss.Style
	Today    lipgloss.Style
	Selected lipgloss.Style
	Holiday  lipgloss.Style
	Workday  lipgloss.Style
	Help     lipgloss.Style
	Frame    lipgloss.Style
}

// DefaultStyles are the colored styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FEC260")),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A5B4FC")),
		Cell:     lipgloss.NewStyle(),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		Today:    lipgloss.NewStyle().Foreground(lipgloss.Color("#34D399")),
		Selected: lipgloss.NewStyle().Reverse(true),
		Holiday:  lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")),
		Workday:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F97316")),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8")),
		Frame: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#475569")).
			Padding(0, 1),
	}
}

// PlainStyles render text only. The selection is marked with brackets
// instead of reverse video.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title: plain, Header: plain, Cell: plain, Dim: plain, Today: plain,
		Selected: plain, Holiday: plain, Workday: plain, Help: plain, Frame: plain,
	}
}

// Renderer turns grids into text blocks.
type Renderer struct {
	Locale locale.Config
	Styles Styles
	// NoColor drops every escape sequence and the frame.
	NoColor bool
	// HideSpillover blanks days from adjacent months, as year views do.
	HideSpillover bool
}

// New returns a renderer for cfg, colored unless noColor is set.
func New(cfg locale.Config, noColor bool) Renderer {
	r := Renderer{Locale: cfg, NoColor: noColor, Styles: DefaultStyles()}
	if noColor {
		r.Styles = PlainStyles()
	}
	return r
}

// Block packages rendered lines with their visual width and height.
type Block struct {
	Lines  []string
	Width  int
	Height int
}

// String joins the lines.
func (b Block) String() string {
	return strings.Join(b.Lines, "\n")
}

// MonthTitle is the header of a month grid.
func (r Renderer) MonthTitle(g calendar.Grid) string {
	for _, d := range g.Days {
		if d.IsCurrentPeriod {
			return r.Locale.MonthYearText(d.Date)
		}
	}
	return g.Key
}

// WeekTitle is the header of a week grid. It names the week row of the
// selected day when the week holds it, and of the first day otherwise.
func (r Renderer) WeekTitle(g calendar.Grid) (string, error) {
	if len(g.Days) == 0 {
		return g.Key, nil
	}
	anchor := g.Days[0].Date
	if sel, ok := g.Selected(); ok {
		anchor = sel.Date
	}
	return r.Locale.WeekTitle(anchor)
}

// Grid renders g under title.
func (r Renderer) Grid(g calendar.Grid, title string) Block {
	lunar := false
	for _, d := range g.Days {
		if d.HasLunarData() {
			lunar = true
			break
		}
	}

	width := minCellWidth
	for _, name := range r.Locale.WeekDayNames() {
		width = max(width, textwidth.StringWidth(name))
	}
	for _, d := range g.Days {
		width = max(width, textwidth.StringWidth(r.dateText(d)))
		if lunar {
			width = max(width, textwidth.StringWidth(r.labelText(d)))
		}
	}

	rows := make([]string, 0, g.WeeksCount*2+1)
	header := make([]string, 0, 7)
	for _, name := range r.Locale.WeekDayNames() {
		header = append(header, r.Styles.Header.Render(textwidth.Center(name, width)))
	}
	rows = append(rows, strings.Join(header, " "))

	for _, week := range g.Weeks() {
		dates := make([]string, len(week))
		labels := make([]string, len(week))
		for i, d := range week {
			style := r.cellStyle(d)
			dates[i] = style.Render(textwidth.Center(r.dateText(d), width))
			labels[i] = style.Render(textwidth.Center(r.labelText(d), width))
		}
		rows = append(rows, strings.Join(dates, " "))
		if lunar {
			rows = append(rows, strings.Join(labels, " "))
		}
	}

	body := strings.Join(rows, "\n")
	if !r.NoColor {
		body = r.Styles.Frame.Render(body)
	}
	lines := append([]string{r.Styles.Title.Render(title), ""}, strings.Split(body, "\n")...)

	w := 0
	for _, line := range lines {
		w = max(w, textwidth.StringWidth(line))
	}
	return Block{Lines: lines, Width: w, Height: len(lines)}
}

// Month renders a month grid with its localized title.
func (r Renderer) Month(g calendar.Grid) Block {
	return r.Grid(g, r.MonthTitle(g))
}

// Week renders a one-row grid with its localized title.
func (r Renderer) Week(g calendar.Grid) (Block, error) {
	title, err := r.WeekTitle(g)
	if err != nil {
		return Block{}, err
	}
	return r.Grid(g, title), nil
}

// Layout places blocks side by side as far as width allows, then wraps.
func Layout(blocks []Block, width int) string {
	if len(blocks) == 0 {
		return ""
	}
	blockWidth := 0
	for _, b := range blocks {
		blockWidth = max(blockWidth, b.Width)
	}
	perRow := 1
	if width > 0 && blockWidth > 0 {
		perRow = max(1, (width+blockGap)/(blockWidth+blockGap))
	}

	gap := strings.Repeat(" ", blockGap)
	rows := make([]string, 0, (len(blocks)+perRow-1)/perRow)
	for start := 0; start < len(blocks); start += perRow {
		end := min(start+perRow, len(blocks))
		parts := make([]string, 0, (end-start)*2)
		for i, b := range blocks[start:end] {
			if i > 0 {
				parts = append(parts, gap)
			}
			padded := make([]string, len(b.Lines))
			for j, line := range b.Lines {
				padded[j] = textwidth.PadRight(line, blockWidth)
			}
			parts = append(parts, strings.Join(padded, "\n"))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	}
	return strings.Join(rows, "\n\n")
}

// Year renders twelve month grids laid out for width.
func (r Renderer) Year(grids []calendar.Grid, width int) string {
	r.HideSpillover = true
	blocks := make([]Block, len(grids))
	for i, g := range grids {
		blocks[i] = r.Month(g)
	}
	return Layout(blocks, width)
}

// Legend explains the holiday colors. Plain output spells them out in the
// cell text instead.
func (r Renderer) Legend() string {
	if r.NoColor {
		return "* holiday  + working day"
	}
	return r.Styles.Holiday.Render("■ holiday") + "  " + r.Styles.Workday.Render("■ working day")
}

// CacheWarning tells the user how to refresh the holiday data.
func (r Renderer) CacheWarning() string {
	return r.Styles.Dim.Render("Holiday data is missing or older than 6 months; run calgrid -u to update it.")
}

func (r Renderer) visible(d calendar.Day) bool {
	return d.IsCurrentPeriod || !r.HideSpillover
}

func (r Renderer) dateText(d calendar.Day) string {
	if !r.visible(d) {
		return ""
	}
	text := fmt.Sprintf("%2d", d.Date.Day())
	if r.NoColor {
		if d.HolidayInfo != nil {
			if d.HolidayInfo.IsHoliday {
				text += "*"
			} else {
				text += "+"
			}
		}
		if d.IsSelected {
			text = "[" + strings.TrimSpace(text) + "]"
		}
	}
	return text
}

func (r Renderer) labelText(d calendar.Day) string {
	if !r.visible(d) {
		return ""
	}
	return d.SecondaryLabel()
}

// cellStyle picks one style per cell. Selection wins, then holidays and
// working days, then today, then spillover dimming.
func (r Renderer) cellStyle(d calendar.Day) lipgloss.Style {
	switch {
	case !r.visible(d):
		return r.Styles.Cell
	case d.IsSelected:
		return r.Styles.Selected
	case d.HolidayInfo != nil && d.HolidayInfo.IsHoliday:
		return r.Styles.Holiday
	case d.HolidayInfo != nil:
		return r.Styles.Workday
	case d.IsToday:
		return r.Styles.Today
	case !d.IsCurrentPeriod:
		return r.Styles.Dim
	default:
		return r.Styles.Cell
	}
}
