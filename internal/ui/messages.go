package ui

import (
	"github.com/stemforge/stemforge/internal/pipeline"
)

// StageMsg reports a pipeline stage transition for the active track.
type StageMsg struct {
	TrackIndex int
	Stage      pipeline.Stage
	Detail     string
}

// TrackStartMsg indicates a new track has started processing
type TrackStartMsg struct {
	TrackIndex int
	TrackName  string
}

// TrackCompleteMsg indicates a track has finished processing
type TrackCompleteMsg struct {
	TrackIndex    int
	PremasterPath string
	MasterPath    string
	Error         error
}

// AllCompleteMsg indicates all tracks have been processed
type AllCompleteMsg struct{}
