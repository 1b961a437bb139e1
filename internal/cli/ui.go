package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/kintree/pkg/family"
)

// statusOut receives status lines. Command results (JSON, tables, paths)
// go to CLI.out instead so they can be piped.
var statusOut io.Writer = os.Stdout

// =============================================================================
// Palette & Styles
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // links, commands
	colorRose   = lipgloss.Color("175") // female members
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleHighlight for emphasized values such as member names.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(18)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached = lipgloss.NewStyle().Foreground(colorGreen)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Lines
// =============================================================================

func status(icon string, format string, args ...any) {
	fmt.Fprintln(statusOut, icon+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) {
	status(styleIconSuccess.Render(iconSuccess), format, args...)
}

func printError(format string, args ...any) {
	status(styleIconError.Render(iconError), format, args...)
}

func printWarning(format string, args ...any) {
	status(styleWarning.Render(iconWarning), "%s", styleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	status(styleIconInfo.Render(iconInfo), format, args...)
}

// printDetail prints an indented, dimmed line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written file.
func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(iconArrow)+" "+styleValue.Render(path))
}

// printKeyValue prints a labeled value; view settings keys fit the label column.
func printKeyValue(key, value string) {
	fmt.Fprintln(statusOut, styleKey.Render(key)+" "+styleValue.Render(value))
}

// printStats prints layout statistics on one line, e.g.
// "7 members · 6 connectors · cached".
func printStats(members, connectors, problems int, cached bool) {
	parts := []string{
		fmt.Sprintf("%d members", members),
		fmt.Sprintf("%d connectors", connectors),
	}
	if problems > 0 {
		parts = append(parts, styleWarning.Render(fmt.Sprintf("%d recovered references", problems)))
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, "fresh")
	}
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}
	fmt.Fprintln(statusOut, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(statusOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(statusOut)
}

// =============================================================================
// Member Table
// =============================================================================

var memberColumns = []string{"ID", "Name", "Gender", "Gen", "Life", "Father", "Mother", "Spouse"}

// memberTable renders members as a bordered table. Names are tinted by
// gender; reference columns are dimmed.
func memberTable(members []family.Member) string {
	rows := make([][]string, 0, len(members))
	genders := make([]family.Gender, 0, len(members))
	for _, m := range members {
		m = m.Normalized()
		genders = append(genders, m.Gender)
		rows = append(rows, []string{
			m.ID.String(),
			m.Name,
			string(m.Gender),
			strconv.Itoa(m.Gen()),
			dash(m.Lifespan()),
			dash(m.FatherID.String()),
			dash(m.MotherID.String()),
			dash(m.SpouseID.String()),
		})
	}
	header := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(memberColumns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row < 0 || row >= len(genders):
				return header
			case col == 1:
				return cell.Foreground(genderColor(genders[row]))
			case col >= 5:
				return cell.Foreground(colorDim)
			}
			return cell
		}).
		Render()
}

func genderColor(g family.Gender) lipgloss.Color {
	switch g {
	case family.GenderMale:
		return colorBlue
	case family.GenderFemale:
		return colorRose
	}
	return colorWhite
}

func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
