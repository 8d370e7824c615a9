package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aussiebroadwan/questboard/pkg/questsdk"
	"github.com/aussiebroadwan/questboard/pkg/questx"
)

const barWidth = 20

var bandColors = map[questx.ColorBand]lipgloss.Color{
	questx.ColorRed:     lipgloss.Color("#FF6B6B"),
	questx.ColorOrange:  lipgloss.Color("#FF9F43"),
	questx.ColorYellow:  lipgloss.Color("#F7B801"),
	questx.ColorGreen:   lipgloss.Color("#4CAF50"),
	questx.ColorVictory: lipgloss.Color("#5B8DEF"),
}

// printer writes command output. Styles come from a renderer bound to the
// output, so colour is dropped when it is not a terminal.
type printer struct {
	out io.Writer

	title  lipgloss.Style
	muted  lipgloss.Style
	bands  map[questx.ColorBand]lipgloss.Style
	errors lipgloss.Style
}

func newPrinter(out io.Writer) *printer {
	r := lipgloss.NewRenderer(out)

	p := &printer{
		out:    out,
		title:  r.NewStyle().Bold(true),
		muted:  r.NewStyle().Foreground(lipgloss.Color("#A0AEC0")),
		errors: r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		bands:  make(map[questx.ColorBand]lipgloss.Style, len(bandColors)),
	}
	for band, color := range bandColors {
		p.bands[band] = r.NewStyle().Foreground(color)
	}
	p.bands[questx.ColorVictory] = p.bands[questx.ColorVictory].Bold(true)

	return p
}

func (p *printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// progress renders "[#####...............]  25%" in the colour of its band.
func (p *printer) progress(percent int) string {
	filled := max(0, min(barWidth, percent*barWidth/100))
	bar := "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
	text := fmt.Sprintf("%s %3d%%", bar, percent)

	style, ok := p.bands[questx.ProgressColor(percent)]
	if !ok {
		return text
	}
	return style.Render(text)
}

func (p *printer) profile(me *questsdk.Profile) {
	p.printf("%s %s\n", p.title.Render(me.Username), p.muted.Render("("+me.Role+")"))
	if me.DisplayName != "" {
		p.printf("  name:   %s\n", me.DisplayName)
	}
	p.printf("  id:     %s\n", me.ID)
	p.printf("  joined: %s\n", me.CreatedAt.Format("2006-01-02"))
}

func (p *printer) questLine(q questsdk.Quest) {
	p.printf("%s  %s  %s\n", p.progress(q.Progress), p.muted.Render(q.ID), q.Title)
}

func (p *printer) quest(q *questsdk.Quest) {
	p.printf("%s\n", p.title.Render(q.Title))
	p.printf("%s\n", p.muted.Render(q.ID+"  organization "+q.OrganizationID))
	if q.Description != "" {
		p.printf("%s\n", q.Description)
	}
	p.printf("\n%s\n\n", p.progress(q.Progress))

	for i, s := range q.Steps {
		p.printf("%2d. %s  %s\n", i+1, s.Title, p.muted.Render(s.ID))
		p.printf("    %s  %s\n", p.progress(s.Progress), formatAmounts(s))
	}
}

func (p *printer) organizations(orgs []questsdk.Organization) {
	if len(orgs) == 0 {
		p.printf("%s\n", p.muted.Render("no organizations"))
		return
	}
	for _, o := range orgs {
		p.printf("%s  %s\n", p.muted.Render(o.ID), o.Name)
	}
}

func (p *printer) failure(err error) {
	p.printf("%s %s\n", p.errors.Render("error:"), describe(err))
}

func formatAmounts(s questsdk.QuestStep) string {
	current := strconv.FormatFloat(s.CurrentValue, 'f', -1, 64)
	target := strconv.FormatFloat(s.TargetValue, 'f', -1, 64)
	if s.Kind == questx.KindFinancial {
		return fmt.Sprintf("$%s of $%s raised", current, target)
	}
	return fmt.Sprintf("%s of %s volunteers", current, target)
}
