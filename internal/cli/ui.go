package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stackhealth/pkg/health"
	"github.com/matzehuels/stackhealth/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(18)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + styleWarning.Render(msg))
}

func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + styleDim.Render(msg))
}

// =============================================================================
// Record Display
// =============================================================================

// row is one labeled value of a health record.
type row struct {
	key, value string
}

// printRecord prints a result as a titled key/value block followed by a
// status line.
func printRecord(w io.Writer, res *pipeline.Result) {
	fmt.Fprintln(w, styleTitle.Render(res.Record.Identity().String()))

	rows := recordRows(res.Record)
	if len(rows) == 0 {
		fmt.Fprintln(w, "  "+styleWarning.Render("no health data available"))
	}
	for _, r := range rows {
		fmt.Fprintln(w, "  "+styleKey.Render(r.key)+" "+styleValue.Render(r.value))
	}

	status := iconFresh
	statusStyle := styleComputed
	if res.CacheHit {
		status = iconCached
		statusStyle = styleCached
	}
	parts := []string{
		statusStyle.Render(status),
		styleDim.Render("analyzed " + res.AnalyzedAt.Local().Format(time.DateTime)),
	}
	fmt.Fprintln(w, "  "+strings.Join(parts, styleDim.Render(" · ")))
}

// recordRows lists the set fields of rec in display order.
func recordRows(rec health.Record) []row {
	var rows []row
	addInt := func(key string, v *int) {
		if v != nil {
			rows = append(rows, row{key, strconv.Itoa(*v)})
		}
	}
	addBool := func(key string, v *bool) {
		if v != nil {
			rows = append(rows, row{key, yesNo(*v)})
		}
	}

	addInt("Stars", rec.Stars)
	addInt("Forks", rec.Forks)
	addInt("Dependents", rec.Dependents)
	addInt("Contributors", rec.Contributors)
	addInt("Bus factor", rec.BusFactor)
	if rec.CommitFrequencyWeekly != nil {
		rows = append(rows, row{"Commits / week", strconv.FormatFloat(*rec.CommitFrequencyWeekly, 'f', 2, 64)})
	}
	if rec.LastCommit != nil {
		rows = append(rows, row{"Last commit", rec.LastCommit.UTC().Format(time.DateOnly)})
	}
	addInt("Open issues", rec.OpenIssues)
	addInt("Open PRs", rec.OpenPRs)
	if rec.AvgIssueAgeDays != nil {
		rows = append(rows, row{"Avg issue age", fmt.Sprintf("%d days", *rec.AvgIssueAgeDays)})
	}
	addInt("Files", rec.Files)
	addBool("Archived", rec.Archived)
	addBool("README", rec.HasReadme)
	addBool("Code of conduct", rec.HasCodeOfConduct)
	addBool("Security policy", rec.HasSecurityPolicy)
	if rec.ScorecardScore != nil {
		rows = append(rows, row{"Scorecard", scorecardSummary(rec)})
	}
	return rows
}

func scorecardSummary(rec health.Record) string {
	s := strconv.FormatFloat(*rec.ScorecardScore, 'f', 1, 64) + "/10"
	var meta []string
	if rec.ScorecardVersion != nil && *rec.ScorecardVersion != "" {
		meta = append(meta, *rec.ScorecardVersion)
	}
	if rec.ScorecardTimestamp != nil {
		meta = append(meta, rec.ScorecardTimestamp.UTC().Format(time.DateOnly))
	}
	if n := len(rec.ScorecardChecks); n > 0 {
		meta = append(meta, fmt.Sprintf("%d checks", n))
	}
	if len(meta) > 0 {
		s += " (" + strings.Join(meta, ", ") + ")"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
