package ui

import "github.com/charmbracelet/lipgloss"

// Style palette shared by every command's summary output.
var (
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ecc71")).Bold(true)
	WarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f1c40f")).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c")).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2f81f7"))
	SubtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
)
