package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/memory"
	"github.com/tmc/langchaingo/prompts"
	"go.uber.org/zap"

	"github.com/aguxez/dine/logger"
	"github.com/aguxez/dine/models"
)

// Advisor writes a short note on how the recommended meal lines up with the
// user's macro targets. It remembers the last few notes so it does not repeat
// itself across meals.
type Advisor struct {
	chain        *chains.LLMChain
	bufferMemory *memory.ConversationWindowBuffer
}

const promptTemplate = `
You are a nutrition assistant for a university dining hall.
The dining hall has already picked the recommended items below; do not
suggest other foods. Compare the recommended meal with the student's targets.

{{.CombinedInput}}

Write at most 120 words of markdown:
1. One line on how close the totals are to each target.
2. Which recommended item contributes most to any gap.
3. One practical tip for the next meal.

Keep it displayable in a terminal.
`

// NewOpenAI builds the model the advisor uses, pointed at any OpenAI
// compatible endpoint.
func NewOpenAI(baseURL, token, model string) (*openai.LLM, error) {
	return openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(token),
		openai.WithModel(model),
	)
}

func NewAdvisor(llm llms.Model) *Advisor {
	chain := chains.NewLLMChain(
		llm,
		prompts.NewPromptTemplate(promptTemplate, []string{"CombinedInput"}),
	)

	return &Advisor{
		chain:        chain,
		bufferMemory: memory.NewConversationWindowBuffer(3),
	}
}

// Advise returns markdown commentary for the recommendations of one meal.
func (a *Advisor) Advise(ctx context.Context, meal models.MealType, recs []models.Recommendation, targets models.MacroInfo) (string, error) {
	if len(recs) == 0 {
		return "", fmt.Errorf("no recommendations for %s", meal)
	}

	history, err := a.bufferMemory.LoadMemoryVariables(ctx, map[string]any{})
	if err != nil {
		return "", fmt.Errorf("loading memory variables: %w", err)
	}

	input := map[string]any{
		"CombinedInput": BuildInput(meal, recs, targets) + fmt.Sprintf("\nEarlier notes: %v", history["history"]),
	}

	result, err := chains.Call(ctx, a.chain, input)
	if err != nil {
		return "", fmt.Errorf("calling chain: %w", err)
	}

	if err := a.bufferMemory.SaveContext(ctx, input, result); err != nil {
		logger.Warn("saving advisor memory", zap.Error(err))
	}

	text, ok := result["text"].(string)
	if !ok {
		return "", fmt.Errorf("unexpected chain output %T", result["text"])
	}
	return stripFences(text), nil
}

// BuildInput describes the meal for the prompt.
func BuildInput(meal models.MealType, recs []models.Recommendation, targets models.MacroInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meal: %s\n", meal)
	fmt.Fprintln(&b, "Recommended items:")
	for _, r := range recs {
		fmt.Fprintf(&b, "- %s\n", r.Item)
	}

	totals := recs[0].Totals()
	fmt.Fprintln(&b, "Totals vs targets:")
	for _, m := range models.AllMacros {
		fmt.Fprintf(&b, "- %s: %.0f of %.0f\n", m, totals.Get(m), targets.Get(m))
	}
	return b.String()
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```markdown")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
