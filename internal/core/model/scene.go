package model

// Scene identifies one of the top-level narrative phases.
type Scene int

const (
	SceneUniversal Scene = iota
	SceneEarth
	SceneSpace
	SceneCrash
)

// Scenes lists every scene in playback order.
var Scenes = []Scene{SceneUniversal, SceneEarth, SceneSpace, SceneCrash}

func (scene Scene) String() string {
	switch scene {
	case SceneUniversal:
		return "universal"
	case SceneEarth:
		return "earth"
	case SceneSpace:
		return "space"
	case SceneCrash:
		return "crash"
	default:
		return "unknown"
	}
}

// Next returns the scene that follows in playback order.
// Crash is terminal and returns itself with ok=false.
func (scene Scene) Next() (Scene, bool) {
	switch scene {
	case SceneUniversal:
		return SceneEarth, true
	case SceneEarth:
		return SceneSpace, true
	case SceneSpace:
		return SceneCrash, true
	default:
		return scene, false
	}
}

// Terminal reports whether no transition leaves the scene.
func (scene Scene) Terminal() bool {
	return scene == SceneCrash
}

// ParseScene returns the scene named by String.
func ParseScene(name string) (Scene, bool) {
	for _, scene := range Scenes {
		if scene.String() == name {
			return scene, true
		}
	}
	return SceneUniversal, false
}
