package viewer

// Status is the lifecycle phase of a viewer. Transitions are serialized by
// the controller mutex; flags below are orthogonal to Status and only
// mutable while Ready.
type Status int

const (
	StatusNoModel Status = iota
	StatusProbing
	StatusUnsupported
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusNoModel:
		return "no-model"
	case StatusProbing:
		return "probing"
	case StatusUnsupported:
		return "unsupported"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is a snapshot of a viewer. Err is non-nil only while StatusError.
type State struct {
	Status     Status
	AutoRotate bool
	Wireframe  bool
	Fullscreen bool

	// LoadedModelURL and LoadedModelName identify the asset currently
	// mounted on the renderer. Empty unless StatusReady.
	LoadedModelURL  string
	LoadedModelName string

	Err error
}
