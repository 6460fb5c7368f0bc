package music

import (
	"fmt"
	"strconv"
	"strings"
)

// Semitone offsets from C for each note letter.
var noteOffsets = map[string]int{
	"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
}

// Sharp-based note names per semitone, used when rendering MIDI numbers.
var semitoneNames = [12]string{
	"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
}

// NoteNameToMIDI converts a note name like "E1", "C4", "F#3", "Bb2" to a MIDI
// note number.
// Format: <note><accidental?><octave> where:
//   - note: A-G (case insensitive)
//   - accidental: # (sharp) or b (flat), optional
//   - octave: -1 to 9 (C4 = 60 = middle C)
func NoteNameToMIDI(noteName string) (int, error) {
	if len(noteName) < 2 {
		return 0, fmt.Errorf("note name too short: %s", noteName)
	}

	noteChar := strings.ToUpper(string(noteName[0]))
	semitone, ok := noteOffsets[noteChar]
	if !ok {
		return 0, fmt.Errorf("invalid note letter: %s", noteChar)
	}

	idx := 1
	if idx < len(noteName) {
		if noteName[idx] == '#' {
			semitone++
			idx++
		} else if noteName[idx] == 'b' {
			semitone--
			idx++
		}
	}

	if idx >= len(noteName) {
		return 0, fmt.Errorf("missing octave in note name: %s", noteName)
	}

	octave, err := strconv.Atoi(noteName[idx:])
	if err != nil {
		return 0, fmt.Errorf("invalid octave in note name %s: %w", noteName, err)
	}

	// C-1 = 0, C0 = 12, C4 = 60.
	midiNote := (octave+1)*12 + semitone
	if midiNote < 0 || midiNote > 127 {
		return 0, fmt.Errorf("note %s outside MIDI range: %d", noteName, midiNote)
	}

	return midiNote, nil
}

// MIDIToNoteName renders a MIDI note number as a sharp-based note name.
// The inverse of NoteNameToMIDI over the sharp spelling (Bb decodes to the
// same number as A#, which re-encodes as "A#").
func MIDIToNoteName(midiNote int) (string, error) {
	if midiNote < 0 || midiNote > 127 {
		return "", fmt.Errorf("MIDI note out of range: %d", midiNote)
	}
	octave := midiNote/12 - 1
	return fmt.Sprintf("%s%d", semitoneNames[midiNote%12], octave), nil
}
