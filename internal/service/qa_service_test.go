package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"ai-qa-be/internal/config"
	"ai-qa-be/internal/constant"
	"ai-qa-be/internal/entity"
	"ai-qa-be/internal/pkg/logger"
	"ai-qa-be/pkg/packer"
	"ai-qa-be/pkg/similarity"
	"ai-qa-be/pkg/tokenizer"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

var testBudget = config.BudgetConfig{
	TotalTokens:          1000,
	QACompletionTokens:   100,
	ChatCompletionTokens: 100,
	SelectionTokens:      200,
}

type qaFixture struct {
	db       *memoryDB
	llm      *scriptedLLM
	embedder *tableEmbedder
	svc      IQAService
	texts    map[string]*entity.Text
}

func seedText(db *memoryDB, name, content string, vector []float32, createdAt time.Time) *entity.Text {
	embeddingId := uuid.New()
	db.embeddings[embeddingId] = &entity.Embedding{Id: embeddingId, EmbeddingValue: vector, CreatedAt: createdAt}
	text := &entity.Text{Id: uuid.New(), Name: name, Content: content, EmbeddingId: &embeddingId, CreatedAt: createdAt}
	db.texts[text.Id] = text
	return text
}

func newQAFixture(t *testing.T) *qaFixture {
	t.Helper()
	db := newMemoryDB()
	now := time.Now()
	texts := map[string]*entity.Text{
		"cats":  seedText(db, "cats", "cats purr when content", []float32{1, 0, 0}, now),
		"dogs":  seedText(db, "dogs", "dogs bark at strangers", []float32{0, 1, 0}, now.Add(time.Second)),
		"birds": seedText(db, "birds", "birds sing at dawn", []float32{0.7, 0.7, 0}, now.Add(2*time.Second)),
	}

	model := &scriptedLLM{}
	embedder := &tableEmbedder{vectors: map[string][]float32{"why do cats purr": {1, 0, 0}}}
	budget := tokenizer.Budget{
		Total:      testBudget.TotalTokens,
		Completion: testBudget.QACompletionTokens,
		Selection:  testBudget.SelectionTokens,
	}
	templates := packer.Templates{
		System:      constant.QASystemPrompt,
		Instruction: constant.QAInstructionPrompt,
		Selection:   constant.QASelectionPrompt,
		Placeholder: constant.QAEmptyContextPlaceholder,
	}
	pk := packer.New(NewPassageStore(db), wordCounter{}, budget, templates, NewSourceChooser(model, testBudget.SelectionTokens))
	corpus := NewCorpusService(db, logger.NewNopLogger())

	svc := NewQAService(corpus, embedder, model, pk, similarity.NewScorer(similarity.Config{}), testBudget, 2, logger.NewNopLogger())
	return &qaFixture{db: db, llm: model, embedder: embedder, svc: svc, texts: texts}
}

func TestQASimilarWordsPacksBestMatchesFirst(t *testing.T) {
	f := newQAFixture(t)

	res, err := f.svc.SimilarWords(context.Background(), "why do cats purr")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Prompt, constant.QAInstructionPrompt))
	assert.True(t, strings.HasSuffix(res.Prompt, "\n\nQuestion:why do cats purr"))
	catsAt := strings.Index(res.Prompt, "cats purr when content")
	birdsAt := strings.Index(res.Prompt, "birds sing at dawn")
	require.GreaterOrEqual(t, catsAt, 0)
	require.GreaterOrEqual(t, birdsAt, 0)
	assert.Less(t, catsAt, birdsAt)
	// top two only
	assert.NotContains(t, res.Prompt, "dogs bark")
	assert.Contains(t, res.SourcePrompt, fmt.Sprintf("TextGuid:%q", f.texts["cats"].Id.String()))
}

func TestQATop5KeepsChosenSources(t *testing.T) {
	f := newQAFixture(t)
	cats := f.texts["cats"]
	f.llm.replies = []string{fmt.Sprintf(`[{textGuid: "%s", textName: "cats"}]`, cats.Id)}

	res, err := f.svc.Top5(context.Background(), "why do cats purr")
	require.NoError(t, err)

	assert.Equal(t, []packer.Citation{{TextGuid: cats.Id.String(), TextName: "cats"}}, res.UsingText)
	assert.Contains(t, res.Prompt, "cats purr when content")
	assert.NotContains(t, res.Prompt, "birds sing")

	require.Len(t, f.llm.options, 1)
	assert.Equal(t, 0.0, f.llm.options[0].Temperature)
	assert.Equal(t, testBudget.SelectionTokens, f.llm.options[0].MaxTokens)
}

func TestQATop5WarnsOnUnreadableSelection(t *testing.T) {
	f := newQAFixture(t)
	core, logs := observer.New(zap.WarnLevel)
	f.svc.(*qaService).logger = logger.NewWithCore(core)
	f.llm.replies = []string{`[{textGuid: oops}]`}

	res, err := f.svc.Top5(context.Background(), "why do cats purr")
	require.NoError(t, err)

	assert.Empty(t, res.UsingText)
	assert.Equal(t, 1, res.ParseFailures)
	warned := logs.FilterMessage("Unreadable source selection replies treated as empty").AllUntimed()
	require.Len(t, warned, 1)
	assert.Equal(t, map[string]interface{}{"failures": 1}, warned[0].ContextMap()["details"])
}

func TestQAAnswerUsesSystemPromptAndQAOptions(t *testing.T) {
	f := newQAFixture(t)
	f.llm.replies = []string{"  They are happy.  "}

	res, err := f.svc.Answer(context.Background(), "why do cats purr")
	require.NoError(t, err)
	assert.Equal(t, "They are happy.", res.Text)

	require.Len(t, f.llm.histories, 1)
	history := f.llm.histories[0]
	require.Len(t, history, 2)
	assert.Equal(t, constant.QASystemPrompt, history[0].Content)
	assert.Contains(t, history[1].Content, "cats purr when content")
	assert.Equal(t, constant.QATemperature, f.llm.options[0].Temperature)
	assert.Equal(t, testBudget.QACompletionTokens, f.llm.options[0].MaxTokens)
}

func TestQAAnswerStreamWithNothingChosen(t *testing.T) {
	f := newQAFixture(t)
	f.llm.replies = []string{"[]"}
	f.llm.fragments = []string{"Sorry", ", I don't know."}

	stream, citations, err := f.svc.AnswerStream(context.Background(), "why do cats purr")
	require.NoError(t, err)
	defer stream.Close()

	assert.NotNil(t, citations)
	assert.Empty(t, citations)

	streamed := f.llm.histories[len(f.llm.histories)-1]
	assert.Contains(t, streamed[1].Content, "Context:\n"+constant.QAEmptyContextPlaceholder)

	first, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "Sorry", first)
}

func TestQAEmbeddingFailure(t *testing.T) {
	f := newQAFixture(t)
	f.embedder.err = fmt.Errorf("provider down")

	_, err := f.svc.Answer(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider down")
	assert.Empty(t, f.llm.histories)
}

func TestQAEmptyCorpus(t *testing.T) {
	f := newQAFixture(t)
	f.db.embeddings = map[uuid.UUID]*entity.Embedding{}

	res, err := f.svc.Top5(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, res.UsingText)
	assert.Contains(t, res.Prompt, constant.QAEmptyContextPlaceholder)
	assert.Empty(t, f.llm.histories)
}
