package music

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedToken is returned when a token does not match the canonical
// pitch-set + duration grammar.
var ErrMalformedToken = errors.New("malformed token")

// Token grammar:
//
//	token    := pitchset ':' duration
//	pitchset := 'R' | name ('.' name)*
//	name     := note-name as accepted by NoteNameToMIDI (e.g. C4, F#3)
//	duration := decimal quarter-note value on the quantization grid
//
// Examples: "C4:1", "D4:0.5", "C4.E4.G4:0.5", "R:2".
const (
	restSymbol     = "R"
	pitchSeparator = "."
	durationMarker = ":"
)

// Encode serializes an event to its canonical token. Encoding is total and
// deterministic: the same pitch set and duration always produce the same
// string, regardless of the order pitches arrived in.
func Encode(e Event) string {
	canonical := NewEvent(e.Pitches, e.Duration)
	dur := strconv.FormatFloat(canonical.Duration, 'g', -1, 64)

	if canonical.IsRest() {
		return restSymbol + durationMarker + dur
	}

	names := make([]string, len(canonical.Pitches))
	for i, p := range canonical.Pitches {
		name, err := MIDIToNoteName(p)
		if err != nil {
			// Out-of-range pitches cannot occur in events built through
			// NewEvent from decoded corpus data; fold them into a rest so
			// encoding stays total.
			return restSymbol + durationMarker + dur
		}
		names[i] = name
	}
	return strings.Join(names, pitchSeparator) + durationMarker + dur
}

// Decode parses a token back into the event that produced it. It is total
// over any token ever produced by Encode and fails with ErrMalformedToken on
// anything else. Absolute timing is not part of the token; callers
// reconstruct it from sequence order and cumulative durations.
func Decode(token string) (Event, error) {
	idx := strings.LastIndex(token, durationMarker)
	if idx <= 0 || idx == len(token)-1 {
		return Event{}, fmt.Errorf("%w: %q", ErrMalformedToken, token)
	}

	pitchPart, durPart := token[:idx], token[idx+1:]

	dur, err := strconv.ParseFloat(durPart, 64)
	if err != nil || dur < 0 {
		return Event{}, fmt.Errorf("%w: bad duration in %q", ErrMalformedToken, token)
	}

	if pitchPart == restSymbol {
		return Rest(dur), nil
	}

	names := strings.Split(pitchPart, pitchSeparator)
	pitches := make([]int, 0, len(names))
	for _, name := range names {
		midiNote, err := NoteNameToMIDI(name)
		if err != nil {
			return Event{}, fmt.Errorf("%w: bad pitch %q in %q", ErrMalformedToken, name, token)
		}
		pitches = append(pitches, midiNote)
	}

	return NewEvent(pitches, dur), nil
}

// EncodeAll encodes an event sequence in order.
func EncodeAll(events []Event) []string {
	tokens := make([]string, len(events))
	for i, e := range events {
		tokens[i] = Encode(e)
	}
	return tokens
}

// DecodeAll decodes a token sequence in order, failing on the first
// malformed token.
func DecodeAll(tokens []string) ([]Event, error) {
	events := make([]Event, len(tokens))
	for i, tok := range tokens {
		e, err := Decode(tok)
		if err != nil {
			return nil, err
		}
		events[i] = e
	}
	return events, nil
}
