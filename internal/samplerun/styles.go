// SPDX-License-Identifier: MPL-2.0

package samplerun

import "github.com/charmbracelet/lipgloss"

var (
	// scriptStyle highlights the script name in progress lines.
	scriptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	// dirStyle highlights the target directory in progress lines.
	dirStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D946EF"))
	// versionStyle highlights the required runtime version in skip notices.
	versionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
)
