package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// DisplayWelcomeBanner shows the chat banner.
func DisplayWelcomeBanner() {
	fmt.Println(bannerStyle.Render("finsage — conversational financial analysis"))
	fmt.Println(infoStyle.Render("Ask about company financials; type 'exit' to quit."))
	fmt.Println()
}

func DisplayError(err error) {
	fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
}

func DisplayInfo(message string) {
	fmt.Println(infoStyle.Render(message))
}
