package music

import "github.com/cadenza-ml/cadenza-api/internal/models"

const defaultVelocity = 100

// EventsToNotes flattens a decoded event sequence into renderer note events.
// Absolute start offsets are reconstructed by cumulative summation of event
// durations in emission order; chord pitches share one start offset. Rests
// advance the clock without emitting a note.
func EventsToNotes(events []Event) []models.NoteEvent {
	notes := make([]models.NoteEvent, 0, len(events))
	offset := 0.0
	for _, e := range events {
		for _, p := range e.Pitches {
			notes = append(notes, models.NoteEvent{
				MidiNoteNumber: p,
				Velocity:       defaultVelocity,
				StartBeats:     offset,
				DurationBeats:  e.Duration,
			})
		}
		offset += e.Duration
	}
	return notes
}
