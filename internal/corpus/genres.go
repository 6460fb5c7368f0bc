package corpus

// Characteristics is descriptive genre metadata surfaced on the genres
// endpoint. It is not an input to training or generation.
type Characteristics struct {
	TempoRange  [2]int   `json:"tempo_range"`
	Chords      []string `json:"chords"`
	Instruments []string `json:"instruments"`
}

var genreCharacteristics = map[string]Characteristics{
	"jazz": {
		TempoRange:  [2]int{60, 180},
		Chords:      []string{"Cmaj7", "Dm7", "Em7", "Fmaj7", "G7", "Am7", "Bm7b5"},
		Instruments: []string{"Piano", "Double Bass", "Drums", "Saxophone"},
	},
	"classical": {
		TempoRange:  [2]int{40, 200},
		Chords:      []string{"C", "Dm", "Em", "F", "G", "Am", "Bdim"},
		Instruments: []string{"Piano", "Strings", "Woodwinds"},
	},
	"rock": {
		TempoRange:  [2]int{80, 200},
		Chords:      []string{"A5", "E5", "D5", "G5", "C5", "Am", "Em"},
		Instruments: []string{"Electric Guitar", "Bass Guitar", "Drums"},
	},
	"electronic": {
		TempoRange:  [2]int{100, 180},
		Chords:      []string{"Cm", "Dm", "Fm", "Gm", "Cmaj7", "Dmaj7"},
		Instruments: []string{"Synthesizer", "Drum Machine", "Pad"},
	},
	"blues": {
		TempoRange:  [2]int{60, 120},
		Chords:      []string{"A7", "D7", "E7", "G7", "C7", "F7"},
		Instruments: []string{"Piano", "Guitar", "Bass", "Harmonica"},
	},
	"pop": {
		TempoRange:  [2]int{90, 140},
		Chords:      []string{"C", "G", "D", "A", "F", "Am", "Em", "Dm"},
		Instruments: []string{"Piano", "Guitar", "Bass", "Drums"},
	},
}

// GenreCharacteristics returns the descriptive metadata for a genre, if any
// is known.
func GenreCharacteristics(genre string) (Characteristics, bool) {
	c, ok := genreCharacteristics[genre]
	return c, ok
}
