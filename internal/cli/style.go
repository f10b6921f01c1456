package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/BerylCAtieno/document-chat/internal/models"
)

var (
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A855F7")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func renderNotification(n models.Notification) string {
	switch n.Severity {
	case models.SeveritySuccess:
		return successStyle.Render("✓ " + n.Message)
	case models.SeverityError:
		return errorStyle.Render("✗ " + n.Message)
	default:
		return infoStyle.Render("• " + n.Message)
	}
}

func renderReply(m models.Message) string {
	return assistantStyle.Render("assistant> ") + m.Content
}

func renderDocument(d models.Document) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		dimStyle.Render(d.ID+"  "),
		d.Name,
		dimStyle.Render("  "+string(d.Type)+" · "+d.SizeLabel()),
	)
}
