package textmatch

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_NormalizesAndFilters(t *testing.T) {
	tokens := Tokenize("The Dragon's Lair: a quest for heroes!")

	assert.Equal(t, []string{"dragon", "lair", "quest", "heroes"}, tokens)
}

func TestTokenize_DropsShortAndStopWords(t *testing.T) {
	tokens := Tokenize("a I to of in x on the")

	assert.Empty(t, tokens)
}

func TestTokenize_DedupesPreservingOrder(t *testing.T) {
	tokens := Tokenize("goblin cave goblin warren cave goblin")

	assert.Equal(t, []string{"goblin", "cave", "warren"}, tokens)
}

func TestTokenize_KeepsDigitsAndMixedTokens(t *testing.T) {
	tokens := Tokenize("Level 12 dungeon for 4e veterans")

	assert.Equal(t, []string{"level", "12", "dungeon", "4e", "veterans"}, tokens)
}

func TestTokenize_EmptyInput(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("   \t\n"))
	assert.Empty(t, Tokenize("!!! ... ---"))
}

func TestTokenize_CapsAtMaxTokens(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < MaxTokens+20; i++ {
		fmt.Fprintf(&sb, "word%d ", i)
	}

	tokens := Tokenize(sb.String())

	assert.Len(t, tokens, MaxTokens)
	assert.Equal(t, "word0", tokens[0])
	assert.Equal(t, fmt.Sprintf("word%d", MaxTokens-1), tokens[MaxTokens-1])
}
