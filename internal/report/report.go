// Package report prints experiment results to a terminal.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/nvandessel/recsim/internal/analysis"
	"github.com/nvandessel/recsim/internal/experiment"
	"github.com/nvandessel/recsim/internal/people"
	"github.com/nvandessel/recsim/internal/simulation"
	"github.com/nvandessel/recsim/internal/store"
)

var (
	colorGood  = lipgloss.Color("#2CD7C7")
	colorBad   = lipgloss.Color("#E74C3C")
	colorMuted = lipgloss.Color("#7F8C8D")
	colorTitle = lipgloss.Color("#20B9B4")
)

// Printer writes a report, colouring it when the writer is a terminal.
type Printer struct {
	w     io.Writer
	color bool

	title lipgloss.Style
	good  lipgloss.Style
	bad   lipgloss.Style
	muted lipgloss.Style
	bold  lipgloss.Style
}

// New creates a Printer writing to w. Colour is used only when w is a
// terminal and noColor is false.
func New(w io.Writer, noColor bool) *Printer {
	return &Printer{
		w:     w,
		color: !noColor && IsTerminal(w),
		title: lipgloss.NewStyle().Bold(true).Foreground(colorTitle),
		good:  lipgloss.NewStyle().Foreground(colorGood),
		bad:   lipgloss.NewStyle().Foreground(colorBad),
		muted: lipgloss.NewStyle().Foreground(colorMuted),
		bold:  lipgloss.NewStyle().Bold(true),
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) paint(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// People prints one line per market person: review sum against the neutral
// expectation, realized utility coloured by whether they were well served,
// and their optimal utility.
func (p *Printer) People(result *simulation.SimulationResult, wellServed float64) {
	p.printf("%s\n", p.paint(p.title, "People"))
	neutral := result.Scale.Neutral()
	for _, person := range result.MarketPeople() {
		p.printf("%s\n", p.personLine(person, neutral, wellServed))
	}
}

func (p *Printer) personLine(person *people.Person, neutral, wellServed float64) string {
	reviews := person.Reviews()
	sum := reviews.Sum()
	expected := neutral * float64(reviews.Observed())

	sumText := fmt.Sprintf("%+4d", sum)
	switch {
	case float64(sum) > expected:
		sumText = p.paint(p.good, sumText)
	case float64(sum) < expected:
		sumText = p.paint(p.bad, sumText)
	}

	utility := fmt.Sprintf("%7.2f", person.GeneratedUtility())
	if analysis.IsWellServed(person, wellServed) {
		utility = p.paint(p.good, utility)
	} else {
		utility = p.paint(p.bad, utility)
	}

	return fmt.Sprintf("  %-8s reviews %s  utility %s / %7.2f optimal",
		person.Name(), sumText, utility, analysis.FindOptimalUtility(person))
}

// Matrices prints the utility and review matrices of result.
func (p *Printer) Matrices(result *simulation.SimulationResult) {
	p.printf("%s\n%s\n\n", p.paint(p.title, "Utility matrix"), result.Utility)
	p.printf("%s\n%s\n\n", p.paint(p.title, "Review matrix"), result.Reviews)
}

// Summary prints the averaged metrics of an outcome.
func (p *Printer) Summary(out *experiment.Outcome, a experiment.Analysis) {
	avg := out.Average
	p.printf("%s\n", p.paint(p.title, fmt.Sprintf("Summary of %s (%d experiments, %s)",
		out.Scenario.Name, len(out.Metrics), out.Duration.Round(time.Millisecond))))

	p.metric("Market utility", fmt.Sprintf("%.2f of %.2f possible (%s)",
		avg.ActualUtility, avg.MaxUtility, p.percent(avg.PercentOptimal)))
	p.metric("Well served", p.percent(avg.PercentWellServed))
	p.metric("Used top good", fmt.Sprintf("%s (optimal %s)",
		p.percent(avg.PercentUsedTop1), p.percent(avg.OptimalUsedTop1)))
	p.metric("Used top quarter", fmt.Sprintf("%s (optimal %s)",
		p.percent(avg.PercentUsedTopQuarter), p.percent(avg.OptimalUsedTopQuarter)))
	p.metric("Used top half", fmt.Sprintf("%s (optimal %s)",
		p.percent(avg.PercentUsedTopHalf), p.percent(avg.OptimalUsedTopHalf)))
	p.metric("Ticks run", fmt.Sprintf("%.1f", avg.TicksRun))

	p.printf("\n%s\n", p.paint(p.title, "Cold-start probe"))
	p.metric("Top goods received", p.percent(avg.ProbePercentTopReceived))
	p.metric("Utility", fmt.Sprintf("%.2f (optimal %.2f, popular %.2f)",
		avg.ProbeActualUtility, avg.ProbeOptimalUtility, avg.ProbePopularUtility))
	p.metric("Random choice", fmt.Sprintf("%.2f", avg.RandomUtility))

	gain := fmt.Sprintf("%+.2f (%+.2fx the utility mean)", avg.RecommenderGain, avg.GainOverMean)
	if avg.RecommenderGain >= 0 {
		gain = p.paint(p.good, gain)
	} else {
		gain = p.paint(p.bad, gain)
	}
	p.metric("Recommender gain", gain)

	goods := out.Scenario.Size
	half := min(a.NGoods/2, goods)
	all := min(a.NGoods, goods)
	p.printf("\n")
	p.likely(avg.ProbeMostTop1, avg.ProbeLeastTop1, min(1, goods))
	p.likely(avg.ProbeMostHalf, avg.ProbeLeastHalf, half)
	p.likely(avg.ProbeMostAll, avg.ProbeLeastAll, all)
}

func (p *Printer) likely(most, least float64, count int) {
	if count == 0 {
		return
	}
	line := analysis.LikelyRecommended(int(math.Round(most)), int(math.Round(least)), count)
	p.printf("  %s\n", line)
}

func (p *Printer) metric(label, value string) {
	p.printf("  %s %s\n", p.paint(p.muted, fmt.Sprintf("%-20s", label+":")), value)
}

func (p *Printer) percent(v float64) string {
	return p.paint(p.bold, fmt.Sprintf("%.1f%%", v))
}

// Files lists written output files.
func (p *Printer) Files(paths []string) {
	if len(paths) == 0 {
		return
	}
	p.printf("\n%s\n", p.paint(p.title, "Wrote"))
	for _, path := range paths {
		p.printf("  %s\n", path)
	}
}

// Runs prints archived run summaries as a table.
func (p *Printer) Runs(runs []store.Summary) {
	if len(runs) == 0 {
		p.printf("No archived runs.\n")
		return
	}
	header := fmt.Sprintf("%-36s  %-12s  %-20s  %5s  %5s  %9s  %11s  %7s",
		"ID", "NAME", "STARTED", "SIZE", "EXPS", "%OPTIMAL", "%WELLSERVED", "GAIN")
	p.printf("%s\n", p.paint(p.bold, header))
	for _, r := range runs {
		p.printf("%-36s  %-12s  %-20s  %5d  %5d  %9.1f  %11.1f  %+7.2f\n",
			r.ID, truncate(r.Name, 12), r.StartedAt.Format("2006-01-02 15:04:05"),
			r.MatrixSize, r.Experiments, r.PercentOptimal, r.PercentWellServed, r.RecommenderGain)
	}
}

// Run prints one archived run with every averaged metric.
func (p *Printer) Run(run *store.Run) {
	p.printf("%s\n", p.paint(p.title, fmt.Sprintf("Run %s", run.ID)))
	p.metric("Name", run.Name)
	p.metric("Started", run.StartedAt.Format("2006-01-02 15:04:05 MST"))
	p.metric("Duration", run.Duration.String())
	p.metric("Seed", fmt.Sprintf("%d", run.Seed))
	p.metric("Matrix size", fmt.Sprintf("%d", run.MatrixSize))
	p.metric("Experiments", fmt.Sprintf("%d", run.Experiments))

	p.printf("\n%s\n", p.paint(p.title, "Average metrics"))
	for _, f := range experiment.Fields {
		p.printf("  %-34s %12.4f\n", f.Name, f.Value(run.Average))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n-1]) + "…"
}
