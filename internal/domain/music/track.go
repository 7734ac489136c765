package music

// Track is a resolved audio track handed back by the audio node. Encoded is
// the opaque node-side representation used to start playback.
type Track struct {
	Encoded     string
	Title       string
	Author      string
	URI         string
	Length      int64
	RequestedBy string
}
