package music

import "math/rand"

// LoopMode controls what happens when a track finishes.
type LoopMode string

const (
	LoopOff   LoopMode = "off"
	LoopTrack LoopMode = "track"
	LoopQueue LoopMode = "queue"
)

func ParseLoopMode(s string) (LoopMode, bool) {
	switch LoopMode(s) {
	case LoopOff, LoopTrack, LoopQueue:
		return LoopMode(s), true
	}
	return "", false
}

// Queue is the per-guild playback queue. It is not safe for concurrent use;
// the music service serializes access per guild.
type Queue struct {
	current *Track
	tracks  []Track
	loop    LoopMode
}

func NewQueue() *Queue {
	return &Queue{loop: LoopOff}
}

func (q *Queue) Current() *Track {
	return q.current
}

func (q *Queue) Loop() LoopMode {
	return q.loop
}

func (q *Queue) SetLoop(mode LoopMode) {
	q.loop = mode
}

func (q *Queue) Len() int {
	return len(q.tracks)
}

// Tracks returns a copy of the pending tracks in play order.
func (q *Queue) Tracks() []Track {
	out := make([]Track, len(q.tracks))
	copy(out, q.tracks)
	return out
}

func (q *Queue) Enqueue(t Track) {
	q.tracks = append(q.tracks, t)
}

// Next advances the queue honoring the loop mode and returns the track to
// play, or nil when the queue is exhausted.
func (q *Queue) Next() *Track {
	if q.loop == LoopTrack && q.current != nil {
		return q.current
	}

	if q.loop == LoopQueue && q.current != nil {
		q.tracks = append(q.tracks, *q.current)
	}

	if len(q.tracks) == 0 {
		q.current = nil
		return nil
	}

	next := q.tracks[0]
	q.tracks = q.tracks[1:]
	q.current = &next
	return q.current
}

// Skip discards the current track and advances, bypassing loop-track and
// loop-queue re-insertion for the skipped track.
func (q *Queue) Skip() *Track {
	q.current = nil
	if len(q.tracks) == 0 {
		return nil
	}
	next := q.tracks[0]
	q.tracks = q.tracks[1:]
	q.current = &next
	return q.current
}

// Remove drops the pending track at the given zero-based position.
func (q *Queue) Remove(index int) (*Track, bool) {
	if index < 0 || index >= len(q.tracks) {
		return nil, false
	}
	removed := q.tracks[index]
	q.tracks = append(q.tracks[:index], q.tracks[index+1:]...)
	return &removed, true
}

func (q *Queue) Shuffle() {
	rand.Shuffle(len(q.tracks), func(i, j int) {
		q.tracks[i], q.tracks[j] = q.tracks[j], q.tracks[i]
	})
}

func (q *Queue) Clear() {
	q.current = nil
	q.tracks = nil
}
