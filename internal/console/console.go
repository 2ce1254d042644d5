package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7FDBFF")).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7FDBFF")).
			Padding(0, 3).
			Align(lipgloss.Center)

	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FDBFF")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00F5D4"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5C57"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EAEAEA"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F3F99D"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6ADC8")).Faint(true)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FDBFF"))
)

const ruleWidth = 60

// Banner prints the boxed application header.
func Banner(title, tagline string) {
	fmt.Println(bannerStyle.Render(title + "\n" + tagline))
}

// Rule prints a section divider like "── Title ────────…".
func Rule(title string) {
	head := "── " + title + " "
	pad := ruleWidth - lipgloss.Width(head)
	if pad < 3 {
		pad = 3
	}
	fmt.Println(ruleStyle.Render(head + strings.Repeat("─", pad)))
}

// Success prints a green check line.
func Success(format string, args ...any) {
	fmt.Println(successStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

// Error prints a red cross line.
func Error(format string, args ...any) {
	fmt.Println(errorStyle.Render("✗ " + fmt.Sprintf(format, args...)))
}

// Info prints a neutral arrow line.
func Info(format string, args ...any) {
	fmt.Println(infoStyle.Render("→ " + fmt.Sprintf(format, args...)))
}

// Warn prints a yellow alert line.
func Warn(format string, args ...any) {
	fmt.Println(warnStyle.Render("! " + fmt.Sprintf(format, args...)))
}

// Hint prints a dim advisory line.
func Hint(format string, args ...any) {
	fmt.Println(hintStyle.Render(fmt.Sprintf(format, args...)))
}

// Plain prints an unstyled line, for listing rows that carry their own
// formatting.
func Plain(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

// Prompt reads one line of input under the given label.
func Prompt(label string) (string, error) {
	rl, err := readline.New(promptStyle.Render(label+": "))
	if err != nil {
		return "", err
	}
	defer rl.Close()
	line, err := rl.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// PromptDefault reads one line of input, substituting def when the user just
// presses enter.
func PromptDefault(label, def string) (string, error) {
	value, err := Prompt(fmt.Sprintf("%s [%s]", label, def))
	if err != nil {
		return "", err
	}
	if value == "" {
		return def, nil
	}
	return value, nil
}
