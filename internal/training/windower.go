// Package training turns per-genre corpora into supervised examples and runs
// the full corpus -> vocabulary -> windower -> model -> artifact pipeline.
package training

import (
	"github.com/cadenza-ml/cadenza-api/internal/logger"
	"github.com/cadenza-ml/cadenza-api/internal/seqmodel"
)

// SlidePiece slides a window of w ids across one piece's token-id sequence,
// producing exactly len(ids)-w examples: window ids[i:i+w], target ids[i+w].
// A piece shorter than w+1 ids contributes zero examples; that is not an
// error, the piece is just skipped.
func SlidePiece(ids []int, w int) []seqmodel.Example {
	if len(ids) < w+1 {
		return nil
	}

	examples := make([]seqmodel.Example, 0, len(ids)-w)
	for offset := 0; offset+w < len(ids); offset++ {
		window := make([]int, w)
		copy(window, ids[offset:offset+w])
		examples = append(examples, seqmodel.Example{
			Window: window,
			Target: ids[offset+w],
		})
	}
	return examples
}

// Slide windows each piece independently and concatenates the example sets in
// piece order, so a window never spans the boundary between two source
// pieces. The ordering is stable for a given input; training itself does not
// depend on it.
func Slide(pieces [][]int, w int) []seqmodel.Example {
	var examples []seqmodel.Example
	for i, ids := range pieces {
		pieceExamples := SlidePiece(ids, w)
		if len(pieceExamples) == 0 {
			logger.Warn("Piece too short for window, skipped", logger.Fields{
				"piece_index": i,
				"tokens":      len(ids),
				"window":      w,
			})
			continue
		}
		examples = append(examples, pieceExamples...)
	}
	return examples
}
