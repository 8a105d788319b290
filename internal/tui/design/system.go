package design

import (
	"github.com/charmbracelet/lipgloss"
)

// Spacing units in terminal cells.
const (
	SpaceXS = 1
	SpaceSM = 2

	MinPanelWidth = 20
)

// Color palette with light and dark variants.
var (
	ColorPrimary = lipgloss.AdaptiveColor{
		Light: "#5A56E0",
		Dark:  "#7571F9",
	}
	ColorSuccess = lipgloss.AdaptiveColor{
		Light: "#059669",
		Dark:  "#10B981",
	}
	ColorError = lipgloss.AdaptiveColor{
		Light: "#DC2626",
		Dark:  "#EF4444",
	}
	ColorWarning = lipgloss.AdaptiveColor{
		Light: "#D97706",
		Dark:  "#F59E0B",
	}
	ColorInfo = lipgloss.AdaptiveColor{
		Light: "#2563EB",
		Dark:  "#3B82F6",
	}

	ColorBackground = lipgloss.AdaptiveColor{
		Light: "#FFFFFF",
		Dark:  "#0F0F0F",
	}
	ColorSurface = lipgloss.AdaptiveColor{
		Light: "#F9FAFB",
		Dark:  "#1A1A1A",
	}
	ColorSurfaceAlt = lipgloss.AdaptiveColor{
		Light: "#F3F4F6",
		Dark:  "#262626",
	}
	ColorBorder = lipgloss.AdaptiveColor{
		Light: "#E5E7EB",
		Dark:  "#404040",
	}
	ColorBorderFocus = lipgloss.AdaptiveColor{
		Light: "#5A56E0",
		Dark:  "#7571F9",
	}
	ColorBackgroundOverlay = lipgloss.AdaptiveColor{
		Light: "#FFFFFF",
		Dark:  "#1E1E1E",
	}

	ColorText = lipgloss.AdaptiveColor{
		Light: "#111827",
		Dark:  "#F9FAFB",
	}
	ColorTextSecondary = lipgloss.AdaptiveColor{
		Light: "#6B7280",
		Dark:  "#9CA3AF",
	}
	ColorTextMuted = lipgloss.AdaptiveColor{
		Light: "#9CA3AF",
		Dark:  "#6B7280",
	}

	// Diff line colors
	ColorDiffAdded = lipgloss.AdaptiveColor{
		Light: "#047857",
		Dark:  "#34D399",
	}
	ColorDiffRemoved = lipgloss.AdaptiveColor{
		Light: "#B91C1C",
		Dark:  "#F87171",
	}
	ColorDiffHunk = lipgloss.AdaptiveColor{
		Light: "#6D28D9",
		Dark:  "#A78BFA",
	}
)

// Base styles
var (
	TextSecondaryStyle = lipgloss.NewStyle().
				Foreground(ColorTextSecondary)

	TextSuccessStyle = lipgloss.NewStyle().
				Foreground(ColorSuccess)

	TextErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	TextWarningStyle = lipgloss.NewStyle().
				Foreground(ColorWarning)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	borderFocusStyle = lipgloss.NewStyle().
				Border(lipgloss.ThickBorder()).
				BorderForeground(ColorBorderFocus)
)

// Component styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Background(ColorSurface).
			Foreground(ColorText).
			Padding(0, SpaceSM)

	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorSurfaceAlt).
			Foreground(ColorText).
			Padding(0, SpaceSM).
			Height(1)

	StatusBarSuccessStyle = StatusBarStyle.
				Background(ColorSuccess).
				Foreground(ColorBackground)

	StatusBarErrorStyle = StatusBarStyle.
				Background(ColorError).
				Foreground(ColorBackground)

	StatusBarWarningStyle = StatusBarStyle.
				Background(ColorWarning).
				Foreground(ColorBackground)

	StatusBarInfoStyle = StatusBarStyle.
				Background(ColorInfo).
				Foreground(ColorBackground)

	TabStyle = lipgloss.NewStyle().
			Padding(0, SpaceSM).
			Foreground(ColorTextSecondary)

	TabActiveStyle = TabStyle.
			Foreground(ColorPrimary).
			Bold(true).
			Underline(true)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorBorder).
			Padding(0, SpaceXS)

	InputFocusedStyle = InputStyle.
				BorderForeground(ColorBorderFocus)

	EditorStyle = borderFocusStyle.
			Padding(0, SpaceXS)

	DiffPanelStyle = borderStyle.
			Padding(0, SpaceXS)

	AlertErrorStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorError).
			Foreground(ColorError).
			Padding(0, SpaceXS)

	AlertWarningStyle = AlertErrorStyle.
				BorderForeground(ColorWarning).
				Foreground(ColorWarning)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			MarginBottom(SpaceXS)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary).
			MarginBottom(SpaceXS)

	CenteredOverlayContainerStyle = lipgloss.NewStyle().
					Border(lipgloss.RoundedBorder()).
					BorderForeground(ColorBorder).
					Background(ColorBackgroundOverlay).
					Foreground(ColorText).
					Padding(1, 2)

	LogOverlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Background(ColorBackgroundOverlay).
			Foreground(ColorText).
			Padding(1, 2)

	LogPanelTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1).
				MarginBottom(1).
				Foreground(ColorText)

	ButtonStyle = lipgloss.NewStyle().
			Padding(0, SpaceSM).
			Background(ColorPrimary).
			Foreground(ColorBackground).
			Bold(true)

	ButtonSecondaryStyle = ButtonStyle.
				Background(ColorSurfaceAlt).
				Foreground(ColorText).
				Bold(false)
)

// Log level styles
var (
	LogInfoStyle  = lipgloss.NewStyle().Foreground(ColorText)
	LogWarnStyle  = lipgloss.NewStyle().Foreground(ColorWarning)
	LogErrorStyle = lipgloss.NewStyle().Foreground(ColorError)
	LogDebugStyle = lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true)
)

// Diff styles
var (
	DiffAddedStyle   = lipgloss.NewStyle().Foreground(ColorDiffAdded)
	DiffRemovedStyle = lipgloss.NewStyle().Foreground(ColorDiffRemoved)
	DiffHunkStyle    = lipgloss.NewStyle().Foreground(ColorDiffHunk)
	DiffHeaderStyle  = lipgloss.NewStyle().Foreground(ColorTextSecondary).Bold(true)
)

// PhaseStyle colors a session phase name.
func PhaseStyle(phase string) lipgloss.Style {
	switch phase {
	case "authenticated":
		return TextSuccessStyle
	case "expired":
		return TextErrorStyle
	case "authenticating":
		return TextWarningStyle
	default:
		return TextSecondaryStyle
	}
}

// Initialize sets up the design system with the specified theme.
func Initialize(darkMode bool) {
	lipgloss.SetHasDarkBackground(darkMode)
}
