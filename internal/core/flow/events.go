package flow

import (
	"time"

	"odyssey/internal/core/model"
)

// EventType defines the type of Orchestrator event.
type EventType string

const (
	EventSceneChange EventType = "scene_change"
	EventPause       EventType = "pause"
	EventResume      EventType = "resume"
	EventStopped     EventType = "stopped"
)

// Event represents an Orchestrator update for observers.
type Event struct {
	Type     EventType
	Scene    model.Scene
	Previous model.Scene
	Fade     time.Duration
	RunID    string
	At       time.Time
}
