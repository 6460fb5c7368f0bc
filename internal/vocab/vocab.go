// Package vocab maps a corpus's distinct tokens to a dense integer id range.
package vocab

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrEmptyCorpus is returned when fitting on a token sequence with no
	// tokens at all.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrUnknownToken is returned when a token was not present at fit time.
	ErrUnknownToken = errors.New("unknown token")
	// ErrIDOutOfRange is returned for ids outside [0, Size).
	ErrIDOutOfRange = errors.New("token id out of range")
)

// Vocabulary is a bijection between the distinct tokens of one training
// corpus and ids [0, Size). Id assignment is lexicographic on the token
// string, so fitting the same token multiset in any order reproduces the
// identical assignment. Immutable after Fit.
type Vocabulary struct {
	tokens  []string
	tokenID map[string]int
}

// Fit collects the distinct tokens of a corpus, sorts them lexicographically
// and assigns dense ids in that order.
func Fit(tokens []string) (*Vocabulary, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyCorpus
	}

	seen := make(map[string]bool, len(tokens))
	distinct := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !seen[tok] {
			seen[tok] = true
			distinct = append(distinct, tok)
		}
	}
	sort.Strings(distinct)

	v := &Vocabulary{
		tokens:  distinct,
		tokenID: make(map[string]int, len(distinct)),
	}
	for id, tok := range distinct {
		v.tokenID[tok] = id
	}
	return v, nil
}

// FromTokens rebuilds a vocabulary from a persisted, already-ordered token
// list (the artifact stores tokens in id order).
func FromTokens(ordered []string) (*Vocabulary, error) {
	if len(ordered) == 0 {
		return nil, ErrEmptyCorpus
	}
	v := &Vocabulary{
		tokens:  append([]string(nil), ordered...),
		tokenID: make(map[string]int, len(ordered)),
	}
	for id, tok := range ordered {
		v.tokenID[tok] = id
	}
	return v, nil
}

// Size returns |V|.
func (v *Vocabulary) Size() int {
	return len(v.tokens)
}

// ID returns the id assigned to a token.
func (v *Vocabulary) ID(token string) (int, error) {
	id, ok := v.tokenID[token]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownToken, token)
	}
	return id, nil
}

// Token returns the token assigned to an id.
func (v *Vocabulary) Token(id int) (string, error) {
	if id < 0 || id >= len(v.tokens) {
		return "", fmt.Errorf("%w: %d (size %d)", ErrIDOutOfRange, id, len(v.tokens))
	}
	return v.tokens[id], nil
}

// Tokens returns the full token list in id order. The caller must not
// mutate the returned slice.
func (v *Vocabulary) Tokens() []string {
	return v.tokens
}

// IDs maps a token sequence to ids, failing on the first unknown token.
func (v *Vocabulary) IDs(tokens []string) ([]int, error) {
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		id, err := v.ID(tok)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// TokensOf maps an id sequence back to tokens, failing on the first id
// outside the vocabulary.
func (v *Vocabulary) TokensOf(ids []int) ([]string, error) {
	tokens := make([]string, len(ids))
	for i, id := range ids {
		tok, err := v.Token(id)
		if err != nil {
			return nil, err
		}
		tokens[i] = tok
	}
	return tokens, nil
}
