package models

// NoteEvent represents a single musical note with timing and pitch
// information, in the shape the external renderer consumes.
type NoteEvent struct {
	MidiNoteNumber int     `json:"midiNoteNumber"`
	Velocity       int     `json:"velocity"`
	StartBeats     float64 `json:"startBeats"`
	DurationBeats  float64 `json:"durationBeats"`
}

// GeneratedSequence is the finished output of one generation session:
// the sampled token strings plus the rendered note events.
type GeneratedSequence struct {
	Genre  string      `json:"genre"`
	Tokens []string    `json:"tokens"`
	Notes  []NoteEvent `json:"notes"`
}
