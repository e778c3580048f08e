package generator

import (
	"fmt"
	"math/rand"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/studyvault/studyvault-backend/internal/model"
)

// longWord matches the first "long enough" word-like substring of a chunk,
// used when no lexicon token appears in the text.
var longWord = regexp.MustCompile(`[A-Za-z0-9+#.]{3,}`)

// FakeFactory deterministically-in-structure synthesizes one question of a
// given or random kind from a text chunk. Every generated question is
// answerable with certainty, so this is the guaranteed fallback path when
// the language model is unavailable.
type FakeFactory struct {
	rng *rand.Rand
}

// NewFakeFactory creates a factory. Pass a seeded *rand.Rand for
// reproducible output; nil uses a time-seeded source.
func NewFakeFactory(rng *rand.Rand) *FakeFactory {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &FakeFactory{rng: rng}
}

// MakeQuestion builds one question from a chunk. kind forces the question
// kind; pass the empty string to choose uniformly at random among all seven.
func (f *FakeFactory) MakeQuestion(chunk ChunkInput, idx int, kind model.QuestionKind) model.Question {
	text := chunk.Text
	token := f.subjectToken(text)
	avoid := append([]string{token}, related[token]...)
	distractorPool := sampleExcluding(lexicon, avoid)

	k := kind
	if k == "" {
		k = model.AllQuestionKinds[f.rng.Intn(len(model.AllQuestionKinds))]
	}

	var src *model.QuestionSource
	if chunk.ChunkID != "" || chunk.FileID != "" {
		src = &model.QuestionSource{ChunkID: chunk.ChunkID, FileID: chunk.FileID}
	}

	switch k {
	case model.KindMCQ:
		distractors := f.sample(distractorPool, 3)
		options := f.shuffled(append([]string{token}, distractors...))
		if len(options) > 4 {
			options = options[:4]
		}
		correct := max(0, slices.Index(options, token))
		return model.Question{
			Kind:           model.KindMCQ,
			Text:           fmt.Sprintf("Which term best captures excerpt #%d?", idx+1),
			Options:        options,
			CorrectIndices: []int{correct},
			Source:         src,
		}

	case model.KindMSQ:
		correctTokens := []string{token}
		if rel := related[token]; len(rel) > 0 {
			second := rel[f.rng.Intn(len(rel))]
			if second != token {
				correctTokens = append(correctTokens, second)
			}
		}
		need := max(0, 5-len(correctTokens))
		options := f.shuffled(append(append([]string{}, correctTokens...), f.sample(distractorPool, need)...))
		correctIndices := make([]int, 0, len(correctTokens))
		for _, ct := range correctTokens {
			if i := slices.Index(options, ct); i >= 0 {
				correctIndices = append(correctIndices, i)
			}
		}
		slices.Sort(correctIndices)
		return model.Question{
			Kind:           model.KindMSQ,
			Text:           fmt.Sprintf("Select every term relevant to excerpt #%d.", idx+1),
			Options:        options,
			CorrectIndices: correctIndices,
			Source:         src,
		}

	case model.KindTF:
		// Always a true statement so scoring stays deterministic.
		truth := true
		return model.Question{
			Kind:        model.KindTF,
			Text:        fmt.Sprintf("%q is mentioned or implied in excerpt #%d.", token, idx+1),
			CorrectBool: &truth,
			Source:      src,
		}

	case model.KindCloze:
		return model.Question{
			Kind:         model.KindCloze,
			Text:         clozeText(text, token),
			ClozeAnswers: []string{token},
			Source:       src,
		}

	case model.KindShort:
		acceptable := []string{token}
		if lower := strings.ToLower(token); lower != token {
			acceptable = append(acceptable, lower)
		}
		return model.Question{
			Kind:              model.KindShort,
			Text:              fmt.Sprintf("In one word: the key term of excerpt #%d", idx+1),
			AcceptableAnswers: acceptable,
			Source:            src,
		}

	case model.KindMatch:
		// left[i] pairs with right[i]; the consumer shuffles for display.
		return model.Question{
			Kind:       model.KindMatch,
			Text:       fmt.Sprintf("Pair the terms related to excerpt #%d.", idx+1),
			MatchLeft:  []string{"Protocol", "Database", "Queue", "Format"},
			MatchRight: []string{"HTTP", "MongoDB", "Kafka", "JSON"},
			Source:     src,
		}

	default: // model.KindOrder
		// Stored sequence is the answer key; the consumer shuffles for display.
		return model.Question{
			Kind:       model.KindOrder,
			Text:       fmt.Sprintf("Arrange the logical structure of the topic (excerpt #%d).", idx+1),
			OrderItems: []string{"Definition", "Example", "Advantages", "Drawbacks"},
			Source:     src,
		}
	}
}

// MakeBatch builds one question per chunk. kind forces every question's
// kind; empty string randomizes per question.
func (f *FakeFactory) MakeBatch(chunks []ChunkInput, kind model.QuestionKind) []model.Question {
	out := make([]model.Question, len(chunks))
	for i, c := range chunks {
		out[i] = f.MakeQuestion(c, i, kind)
	}
	return out
}

// subjectToken scans the text for a lexicon token, falls back to the first
// long word-like substring, then to a random lexicon pick.
func (f *FakeFactory) subjectToken(text string) string {
	for _, tok := range lexicon {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(tok) + `\b`)
		if re.MatchString(text) {
			return tok
		}
	}
	if m := longWord.FindString(text); m != "" {
		return m
	}
	return lexicon[f.rng.Intn(len(lexicon))]
}

func (f *FakeFactory) shuffled(xs []string) []string {
	out := append([]string(nil), xs...)
	f.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// sample draws up to k distinct elements from pool in random order.
func (f *FakeFactory) sample(pool []string, k int) []string {
	shuffledPool := f.shuffled(pool)
	if k > len(shuffledPool) {
		k = len(shuffledPool)
	}
	if k < 0 {
		k = 0
	}
	return shuffledPool[:k]
}

func sampleExcluding(pool, avoid []string) []string {
	out := make([]string, 0, len(pool))
	for _, p := range pool {
		if !slices.Contains(avoid, p) {
			out = append(out, p)
		}
	}
	return out
}

// clozeText gaps the first occurrence of token in text. When the token is
// absent, or the gap would fall outside the 240-rune prompt budget, a canned
// sentence keeps the question well-formed.
func clozeText(text, token string) string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(token))
	if loc := re.FindStringIndex(text); loc != nil {
		gapped := text[:loc[0]] + "{{gap1}}" + text[loc[1]:]
		runes := []rune(gapped)
		if len(runes) > 240 {
			runes = runes[:240]
		}
		trimmed := string(runes)
		if model.GapMarker.MatchString(trimmed) {
			return trimmed
		}
	}
	return "The {{gap1}} protocol operates above the transport layer."
}
