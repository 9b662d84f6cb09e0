package question

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/SlpAus/sistatistics-backend/internal/identity"
	"github.com/SlpAus/sistatistics-backend/internal/siq"
	"github.com/SlpAus/sistatistics-backend/internal/tally"
	"github.com/SlpAus/sistatistics-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	mu                                sync.Mutex
	packages, questions, limitExceeds int
}

func (f *fakeRecorder) AddPackage(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.packages++
}

func (f *fakeRecorder) AddQuestions(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions++
}

func (f *fakeRecorder) AddLimitExceeded(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limitExceeds++
}

const maxText = 100

func newService(t *testing.T) (*Service, *fakeRecorder) {
	t.Helper()
	db := testutil.DB(t, append(identity.Models(), tally.Models()...)...)
	rec := &fakeRecorder{}
	m := NewModule(db, identity.NewResolver(db, maxText), rec, 8, testutil.Logger(t))
	return m.Service, rec
}

func textQuestion(text string, right, wrong []string) siq.Question {
	return siq.Question{
		Content: []siq.ContentItem{{Type: siq.ContentText, Value: text}},
		Right:   right,
		Wrong:   wrong,
	}
}

func report(theme, question, answer string, rt tally.RelationType) Report {
	return Report{ThemeName: theme, QuestionText: question, ReportText: answer, ReportType: rt}
}

func samplePackage() *siq.Package {
	return &siq.Package{
		Name: "Pack",
		Rounds: []siq.Round{
			{Themes: []siq.Theme{
				{Name: "Capitals", Questions: []siq.Question{
					textQuestion("Capital of France?", []string{"Paris"}, []string{"Lyon"}),
					{Content: []siq.ContentItem{{Type: siq.ContentImage, Value: "x.png"}}, Right: []string{"Img"}},
				}},
			}},
			{Themes: []siq.Theme{
				{Name: "Rivers", Questions: []siq.Question{
					textQuestion("Longest river?", []string{"Nile"}, nil),
				}},
			}},
		},
	}
}

func TestImportPackageTalliesAnswers(t *testing.T) {
	s, rec := newService(t)
	ctx := context.Background()

	result, err := s.ImportPackage(ctx, samplePackage())
	require.NoError(t, err)
	assert.Empty(t, result.CollectedAnswers)
	assert.Equal(t, 1, rec.packages)
	assert.Equal(t, 3, rec.questions)

	info, err := s.QueryQuestionInfo(ctx, "Capitals", "Capital  of France?")
	require.NoError(t, err)
	assert.ElementsMatch(t, []tally.EntityInfo{
		{EntityName: "Paris", RelationType: tally.Right, Count: 1},
		{EntityName: "Lyon", RelationType: tally.Wrong, Count: 1},
	}, info.Entities)

	// 非文本问题不登记
	info, err = s.QueryQuestionInfo(ctx, "Capitals", "")
	require.NoError(t, err)
	assert.Empty(t, info.Entities)
}

func TestImportPackageReturnsCollectedAnswersByPosition(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		require.NoError(t, s.ImportQuestionReport(ctx, report("Rivers", "Longest river?", "Amazon", tally.Rejected)))
	}
	result, err := s.ImportPackage(ctx, samplePackage())
	require.NoError(t, err)
	assert.Empty(t, result.CollectedAnswers)

	require.NoError(t, s.ImportQuestionReport(ctx, report("Rivers", "Longest river?", "Amazon", tally.Rejected)))
	for i := 0; i < 9; i++ {
		require.NoError(t, s.ImportQuestionReport(ctx, report("Rivers", "Longest river?", "Yangtze", tally.Accepted)))
	}

	result, err = s.ImportPackage(ctx, samplePackage())
	require.NoError(t, err)
	assert.Equal(t, map[QuestionKey][]tally.CollectedAnswer{
		{Round: 1, Theme: 0, Question: 0}: {{AnswerText: "Amazon", RelationType: tally.Rejected, Count: 8}},
	}, result.CollectedAnswers)

	// 同一个问题放在另一个位置时，返回的键跟随本次导入的位置
	moved := &siq.Package{Rounds: []siq.Round{{Themes: []siq.Theme{
		{Name: "Other", Questions: []siq.Question{textQuestion("Unrelated", nil, nil)}},
		{Name: "Rivers", Questions: []siq.Question{
			textQuestion("Filler", nil, nil),
			textQuestion("Longest   river?", nil, nil),
		}},
	}}}}
	result, err = s.ImportPackage(ctx, moved)
	require.NoError(t, err)
	require.Len(t, result.CollectedAnswers, 1)
	assert.Contains(t, result.CollectedAnswers, QuestionKey{Round: 0, Theme: 1, Question: 1})
}

func TestImportPackageSkipsOversizedItems(t *testing.T) {
	s, rec := newService(t)
	ctx := context.Background()
	long := strings.Repeat("z", maxText+1)

	pkg := &siq.Package{Rounds: []siq.Round{{Themes: []siq.Theme{
		{Name: long, Questions: []siq.Question{textQuestion("Skipped with theme", []string{"A"}, nil)}},
		{Name: "Fine", Questions: []siq.Question{
			textQuestion(long, []string{"B"}, nil),
			textQuestion("Kept", []string{long, "C"}, nil),
		}},
	}}}}

	_, err := s.ImportPackage(ctx, pkg)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.limitExceeds)
	assert.Equal(t, 1, rec.questions)

	info, err := s.QueryQuestionInfo(ctx, "Fine", "Kept")
	require.NoError(t, err)
	assert.Equal(t, []tally.EntityInfo{{EntityName: "C", RelationType: tally.Right, Count: 1}}, info.Entities)
}

func TestImportQuestionReport(t *testing.T) {
	s, rec := newService(t)
	ctx := context.Background()

	require.NoError(t, s.ImportQuestionReport(ctx, report("T", "Q", "A", tally.Apellated)))
	require.NoError(t, s.ImportQuestionReport(ctx, report(" T", "Q ", "A", tally.Apellated)))
	require.NoError(t, s.ImportQuestionReport(ctx, report("T", strings.Repeat("q", maxText+1), "A", tally.Apellated)))
	assert.ErrorIs(t, s.ImportQuestionReport(ctx, report("T", "Q", "A", tally.Right)), ErrUnsupportedReportType)

	assert.Equal(t, 1, rec.limitExceeds)
	info, err := s.QueryQuestionInfo(ctx, "T", "Q")
	require.NoError(t, err)
	assert.Equal(t, []tally.EntityInfo{{EntityName: "A", RelationType: tally.Apellated, Count: 2}}, info.Entities)
}

func TestQueryQuestionInfoUnknown(t *testing.T) {
	s, _ := newService(t)
	info, err := s.QueryQuestionInfo(context.Background(), "nope", "nothing")
	require.NoError(t, err)
	assert.NotNil(t, info.Entities)
	assert.Empty(t, info.Entities)
}

func TestImportPackageHonorsCancellation(t *testing.T) {
	s, rec := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ImportPackage(ctx, samplePackage())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, rec.packages)
}
