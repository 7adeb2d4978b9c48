package engine

// String backed enums so values read well in logs.

type SceneKind string
type Anchoring string

const (
	SceneIntro       SceneKind = "intro"
	SceneCollage     SceneKind = "collage"
	SceneProposal    SceneKind = "proposal"
	SceneCelebration SceneKind = "celebration"
)

// SceneOrder is the only forward path through the presentation.
var SceneOrder = []SceneKind{SceneIntro, SceneCollage, SceneProposal, SceneCelebration}

func (k SceneKind) index() int {
	for i, s := range SceneOrder {
		if s == k {
			return i
		}
	}
	return -1
}

// Next returns the scene that follows k, or false for the last scene.
func (k SceneKind) Next() (SceneKind, bool) {
	i := k.index()
	if i < 0 || i+1 >= len(SceneOrder) {
		return "", false
	}
	return SceneOrder[i+1], true
}

const (
	AnchorFlow     Anchoring = "flow"
	AnchorViewport Anchoring = "viewport"
)

// Scene is the single top-level presentation state. Step is meaningful for
// SceneIntro only, EnvelopeOpen for SceneProposal only.
type Scene struct {
	Kind         SceneKind
	Step         int
	EnvelopeOpen bool
}

func IntroScene(step int) Scene { return Scene{Kind: SceneIntro, Step: step} }
