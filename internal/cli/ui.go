package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/siteworks/drawalign/pkg/geometry"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success, candidate layer
	colorYellow = lipgloss.Color("220") // warnings, cursor
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // base layer, commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // labels
	colorDim    = lipgloss.Color("240") // muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// stdout receives human-readable output. JSON output goes to the command's
// own writer instead.
var stdout io.Writer = os.Stdout

func writeLine(s string) {
	fmt.Fprintln(stdout, s)
}

// =============================================================================
// Status Lines
// =============================================================================

func status(icon string, iconStyle lipgloss.Style, msg string) {
	writeLine(iconStyle.Render(icon) + " " + msg)
}

func printSuccess(format string, args ...any) {
	status(iconSuccess, styleIconSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	status(iconError, styleIconError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	status(iconWarning, styleIconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	status(iconInfo, styleIconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line under a status line.
func printDetail(format string, args ...any) {
	writeLine("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written file path.
func printFile(path string) {
	writeLine("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a value under a fixed-width label.
func printKeyValue(key, value string) {
	writeLine(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	writeLine(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	writeLine("")
}

// =============================================================================
// Alignment Output
// =============================================================================

// printTransform prints the four canonical transform fields followed by the
// CSS form.
func printTransform(t geometry.Transform) {
	printKeyValue("scale", StyleNumber.Render(fmt.Sprintf("%.6f", t.Scale)))
	printKeyValue("rotation", StyleNumber.Render(fmt.Sprintf("%.4f°", geometry.Degrees(t.Rotation)))+
		StyleDim.Render(fmt.Sprintf(" (%.6f rad)", t.Rotation)))
	printKeyValue("translateX", StyleNumber.Render(fmt.Sprintf("%.6f", t.TranslateX)))
	printKeyValue("translateY", StyleNumber.Render(fmt.Sprintf("%.6f", t.TranslateY)))
	printKeyValue("css", StyleDim.Render(t.CSSTransform()))
}

// printSource prints a canvas size and where it came from.
func printSource(label string, size geometry.Size, source string, cached bool) {
	tag, tagStyle := iconFresh, styleComputed
	if cached {
		tag, tagStyle = iconCached, styleCached
	}
	line := "  " + StyleDim.Render(label) + " " + StyleValue.Render(formatSize(size))
	if source != "" {
		line += StyleDim.Render(" · " + source)
	}
	writeLine(line + StyleDim.Render(" · ") + tagStyle.Render(tag))
}
