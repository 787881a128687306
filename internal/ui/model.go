// Package ui provides the Bubbletea terminal user interface for stemforge
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stemforge/stemforge/internal/pipeline"
)

// TrackStatus represents the processing state of a single track
type TrackStatus int

const (
	StatusQueued TrackStatus = iota
	StatusProcessing
	StatusComplete
	StatusError
)

// TrackProgress tracks progress for a single input track
type TrackProgress struct {
	InputPath  string
	MasterPath string
	Status     TrackStatus

	// Stage tracking
	Stage       pipeline.Stage
	StageDetail string
	StagesDone  int

	StartTime   time.Time
	ElapsedTime time.Duration

	// Error tracking
	Error error
}

// Model is the Bubbletea model for the processing UI
type Model struct {
	// Track queue
	Tracks          []TrackProgress
	CurrentIndex    int
	TotalTracks     int
	CompletedTracks int
	FailedTracks    int

	// Global state
	StartTime time.Time
	Done      bool

	// Channel for receiving progress updates from the pipeline worker
	ProgressChan chan tea.Msg

	// Terminal dimensions
	Width  int
	Height int
}

// NewModel creates a new UI model with the given input tracks
func NewModel(inputPaths []string) Model {
	tracks := make([]TrackProgress, len(inputPaths))
	for i, path := range inputPaths {
		tracks[i] = TrackProgress{
			InputPath: path,
			Status:    StatusQueued,
		}
	}

	return Model{
		Tracks:       tracks,
		CurrentIndex: -1, // No track processing yet
		TotalTracks:  len(inputPaths),
		StartTime:    time.Now(),
		ProgressChan: make(chan tea.Msg, 100), // Buffered channel
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return waitForProgress(m.ProgressChan)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case StageMsg:
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Tracks) {
			m.Tracks[m.CurrentIndex] = updateTrackProgress(m.Tracks[m.CurrentIndex], msg)
		}
		return m, waitForProgress(m.ProgressChan)

	case TrackStartMsg:
		m.CurrentIndex = msg.TrackIndex
		m.Tracks[m.CurrentIndex].Status = StatusProcessing
		m.Tracks[m.CurrentIndex].StartTime = time.Now()
		return m, waitForProgress(m.ProgressChan)

	case TrackCompleteMsg:
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Tracks) {
			track := &m.Tracks[m.CurrentIndex]
			track.MasterPath = msg.MasterPath
			track.Error = msg.Error
			track.ElapsedTime = time.Since(track.StartTime)

			if msg.Error != nil {
				track.Status = StatusError
				m.FailedTracks++
			} else {
				track.Status = StatusComplete
				m.CompletedTracks++
			}
		}
		return m, waitForProgress(m.ProgressChan)

	case AllCompleteMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return "Initializing...\n"
	}

	if m.Done {
		return renderCompletionSummary(m)
	}

	return renderProcessingView(m)
}

// updateTrackProgress updates a TrackProgress based on a StageMsg
func updateTrackProgress(tp TrackProgress, msg StageMsg) TrackProgress {
	tp.Stage = msg.Stage
	tp.StageDetail = msg.Detail
	tp.ElapsedTime = time.Since(tp.StartTime)

	for i, stage := range pipeline.Stages {
		if stage == msg.Stage {
			tp.StagesDone = i
			break
		}
	}
	if msg.Stage == pipeline.StageDone {
		tp.StagesDone = len(pipeline.Stages)
	}

	return tp
}

// waitForProgress creates a command that waits for progress messages
func waitForProgress(progressChan chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-progressChan
	}
}
