package llm

import (
	"strings"
	"unicode"

	"github.com/dgallion1/clusterscope/internal/model"
)

// EstimateTokens gives a rough token count. Han characters count one token
// each; other words count ~1.33 tokens.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	han := 0
	words := 0
	for _, f := range strings.Fields(text) {
		rest := 0
		for _, r := range f {
			if unicode.Is(unicode.Han, r) {
				han++
			} else {
				rest++
			}
		}
		if rest > 0 {
			words++
		}
	}
	tokens := han + int(float64(words)*1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// TrimHistory keeps the newest messages whose combined estimate fits within
// budget, in their original order. A budget <= 0 keeps everything.
func TrimHistory(history []model.Message, budget int) []model.Message {
	if budget <= 0 {
		return history
	}
	used := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		cost := EstimateTokens(history[i].Content)
		if used+cost > budget {
			break
		}
		used += cost
		start = i
	}
	return history[start:]
}
