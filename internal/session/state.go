package session

// EmbeddingState tracks how far the guest window got towards being hosted.
// The tracked window handle is set exactly in Found, Embedding and Embedded.
type EmbeddingState int

const (
	NotStarted EmbeddingState = iota
	Discovering
	Found
	Embedding
	Embedded
	EmbedFailed
)

func (s EmbeddingState) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Discovering:
		return "discovering"
	case Found:
		return "found"
	case Embedding:
		return "embedding"
	case Embedded:
		return "embedded"
	case EmbedFailed:
		return "embed_failed"
	default:
		return "unknown"
	}
}

// tracksWindow reports whether a window handle is held in this state.
func (s EmbeddingState) tracksWindow() bool {
	return s == Found || s == Embedding || s == Embedded
}

// FullscreenState is the last classification made by the fullscreen monitor.
type FullscreenState int

const (
	Unknown FullscreenState = iota
	Windowed
	Fullscreen
)

func (s FullscreenState) String() string {
	switch s {
	case Windowed:
		return "windowed"
	case Fullscreen:
		return "fullscreen"
	default:
		return "unknown"
	}
}
