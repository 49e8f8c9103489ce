package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/netview/pkg/viewstate"
)

// stdout receives everything commands print for the user. Logs go to the
// logger's writer instead.
var stdout io.Writer = os.Stdout

// ANSI 256 palette.
var (
	colorCyan   = lipgloss.Color("37")
	colorGreen  = lipgloss.Color("71")
	colorYellow = lipgloss.Color("214")
	colorRed    = lipgloss.Color("203")
	colorBlue   = lipgloss.Color("111")
	colorWhite  = lipgloss.Color("252")
	colorGray   = lipgloss.Color("246")
	colorDim    = lipgloss.Color("241")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
)

var (
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleSaved = lipgloss.NewStyle().Foreground(colorGreen)
	styleDirty = lipgloss.NewStyle().Foreground(colorYellow)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconActive  = "●"
	iconSaved   = "saved"
	iconDirty   = "modified"
	separator   = " · "
)

func printLine(parts ...string) {
	fmt.Fprintln(stdout, strings.Join(parts, ""))
}

func printSuccess(format string, args ...any) {
	printLine(styleIconSuccess.Render(iconSuccess), " ", fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printLine(styleIconError.Render(iconError), " ", fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printLine(styleIconWarning.Render(iconWarning), " ", styleIconWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printLine(styleIconInfo.Render(iconInfo), " ", fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	printLine("  ", StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile announces a written output file.
func printFile(path string) {
	printLine("  ", StyleDim.Render(iconArrow), " ", styleValue.Render(path))
}

func printKeyValue(key, value string) {
	printLine(styleKey.Render(key), " ", styleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	printLine(StyleDim.Render(description+":"), " ", styleCommand.Render(cmd))
}

func printNewline() {
	printLine()
}

// printStats prints the size of a session on one line.
func printStats(nodes, edges, snapshots int) {
	printLine("  ", dimList(
		fmt.Sprintf("%d nodes", nodes),
		fmt.Sprintf("%d edges", edges),
		fmt.Sprintf("%d snapshots", snapshots),
	))
}

// printViewStats prints how much of the network a view keeps after
// filtering and culling, its layout state and whether it is saved. Filters
// and dropped edges follow as detail lines.
func printViewStats(h viewstate.Header) {
	printLine("  ", dimList(
		fmt.Sprintf("%d/%d nodes", h.FilteredNodes, h.Nodes),
		fmt.Sprintf("%d/%d edges", h.FilteredEdges, h.Edges),
		fmt.Sprintf("%d visible", h.VisibleNodes),
		h.Layout.String(),
	), StyleDim.Render(separator), saveMark(h.Dirty))
	for _, f := range h.Filters {
		printDetail("filter: %s", f)
	}
	if h.DroppedEdges > 0 {
		printWarning("%d edges dropped (unresolved endpoints)", h.DroppedEdges)
	}
}

func saveMark(dirty bool) string {
	if dirty {
		return styleDirty.Render(iconDirty)
	}
	return styleSaved.Render(iconSaved)
}

func dimList(parts ...string) string {
	return StyleDim.Render(strings.Join(parts, separator))
}
