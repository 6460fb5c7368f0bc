// Package corpus reads per-genre collections of symbolic piece files into
// ordered event sequences. File-level parsing stops here; everything
// downstream consumes pieces as event sequences only.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cadenza-ml/cadenza-api/internal/music"
)

// Piece is one source work: an ordered event sequence with its origin name.
type Piece struct {
	Name   string
	Events []music.Event
}

// pieceEvent is the on-disk event shape: note names plus a quarter-note
// duration. An empty pitch list is a rest.
type pieceEvent struct {
	Pitches  []string `json:"pitches"`
	Duration float64  `json:"duration"`
}

// LoadGenre reads every *.json piece file under <dir>/<genre>, in sorted
// file-name order so repeated loads of the same corpus are identical.
func LoadGenre(dir, genre string) ([]Piece, error) {
	genreDir := filepath.Join(dir, genre)
	entries, err := os.ReadDir(genreDir)
	if err != nil {
		return nil, fmt.Errorf("read genre corpus %s: %w", genreDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".json") {
			continue
		}
		names = append(names, ent.Name())
	}
	sort.Strings(names)

	pieces := make([]Piece, 0, len(names))
	for _, name := range names {
		piece, err := loadPiece(filepath.Join(genreDir, name))
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, piece)
	}
	return pieces, nil
}

func loadPiece(path string) (Piece, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Piece{}, fmt.Errorf("read piece %s: %w", path, err)
	}

	var raw []pieceEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return Piece{}, fmt.Errorf("parse piece %s: %w", path, err)
	}

	events := make([]music.Event, 0, len(raw))
	for i, pe := range raw {
		pitches := make([]int, 0, len(pe.Pitches))
		for _, name := range pe.Pitches {
			midiNote, err := music.NoteNameToMIDI(name)
			if err != nil {
				return Piece{}, fmt.Errorf("piece %s event %d: %w", path, i, err)
			}
			pitches = append(pitches, midiNote)
		}
		events = append(events, music.NewEvent(pitches, pe.Duration))
	}

	return Piece{
		Name:   strings.TrimSuffix(filepath.Base(path), ".json"),
		Events: events,
	}, nil
}
