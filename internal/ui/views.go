package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/stemforge/stemforge/internal/pipeline"
)

// stageLabels maps pipeline stages to display names
var stageLabels = map[pipeline.Stage]string{
	pipeline.StageSeparate:        "Separating stems",
	pipeline.StageLoadStems:       "Loading stems",
	pipeline.StageCompose:         "Composing mix",
	pipeline.StageExportPremaster: "Exporting premaster",
	pipeline.StageMaster:          "Mastering",
	pipeline.StageDone:            "Done",
}

// renderProcessingView renders the main processing view
func renderProcessingView(m Model) string {
	var b strings.Builder

	// Header
	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	// Track queue
	b.WriteString(renderTrackQueue(m))
	b.WriteString("\n\n")

	// Overall progress
	b.WriteString(renderOverallProgress(m))

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5F5FD7")).
		Render("Stemforge 🎛 - Stem Mixer & Mastering Pipeline")

	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Italic(true).
		Render(fmt.Sprintf("Processing %d track(s)", m.TotalTracks))

	return title + "\n" + subtitle
}

// renderTrackQueue renders the list of tracks with their status
func renderTrackQueue(m Model) string {
	var b strings.Builder

	for i, track := range m.Tracks {
		b.WriteString(renderTrackEntry(track, i, m.CurrentIndex))
		b.WriteString("\n")
	}

	return b.String()
}

// renderTrackEntry renders a single track entry in the queue
func renderTrackEntry(track TrackProgress, index int, currentIndex int) string {
	trackName := filepath.Base(track.InputPath)

	switch track.Status {
	case StatusComplete:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
		return fmt.Sprintf(" %s %s → %s\n   Mastered in %.1fs",
			icon, trackName, filepath.Base(track.MasterPath), track.ElapsedTime.Seconds())

	case StatusProcessing:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Render("⚙")
		return fmt.Sprintf(" %s %s\n%s", icon, trackName, renderTrackDetails(track))

	case StatusError:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
		return fmt.Sprintf(" %s %s\n   Error: %v", icon, trackName, track.Error)

	default:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("○")
		return fmt.Sprintf(" %s %s\n   Queued...", icon, trackName)
	}
}

// renderTrackDetails renders detailed progress for the active track
func renderTrackDetails(track TrackProgress) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#5F5FD7")).
		Padding(0, 1).
		Width(60)

	var content strings.Builder

	label := stageLabels[track.Stage]
	if label == "" {
		label = string(track.Stage)
	}
	total := len(pipeline.Stages)
	content.WriteString(fmt.Sprintf("Stage %d/%d: %s\n", min(track.StagesDone+1, total), total, label))

	content.WriteString(renderStageBar(track.StagesDone, total, 40))
	content.WriteString("\n\n")

	content.WriteString(fmt.Sprintf("⏱  Elapsed: %.1fs", track.ElapsedTime.Seconds()))
	if track.StageDetail != "" {
		content.WriteString(fmt.Sprintf("\n→ %s", track.StageDetail))
	}

	return box.Render(content.String())
}

// renderStageBar renders a progress bar over completed stages
func renderStageBar(done, total, width int) string {
	progress := float64(done) / float64(total)
	filled := int(progress * float64(width))
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	percentage := int(progress * 100)

	return fmt.Sprintf("%s %d%%", bar, percentage)
}

// renderOverallProgress renders the overall progress footer
func renderOverallProgress(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#888888")).
		Padding(0, 1).
		Width(60)

	var content string
	if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Tracks) {
		currentTrack := m.CurrentIndex + 1 // 1-indexed for display
		content = fmt.Sprintf("Processing track %d of %d (%d complete)",
			currentTrack, m.TotalTracks, m.CompletedTracks)
	} else {
		content = fmt.Sprintf("Overall Progress: %d/%d complete", m.CompletedTracks, m.TotalTracks)
	}

	return box.Render(content)
}

// renderCompletionSummary renders the final completion summary
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00AA00")).
		Render("✨ Processing Complete!")
	b.WriteString(header)
	b.WriteString("\n\n")

	for _, track := range m.Tracks {
		switch track.Status {
		case StatusComplete:
			b.WriteString(renderCompletedTrack(track))
			b.WriteString("\n")
		case StatusError:
			b.WriteString(fmt.Sprintf(" ✗ %s\n   Error: %v\n", filepath.Base(track.InputPath), track.Error))
		}
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 60))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d of %d track(s) mastered.\n", m.CompletedTracks, m.TotalTracks))

	return b.String()
}

// renderCompletedTrack renders a summary for a completed track
func renderCompletedTrack(track TrackProgress) string {
	trackName := filepath.Base(track.InputPath)
	outputName := filepath.Base(track.MasterPath)

	icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")

	return fmt.Sprintf(" %s %s → %s (%.1fs)",
		icon, trackName, outputName, track.ElapsedTime.Seconds())
}
