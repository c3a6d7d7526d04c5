package service

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"jobprep_backend/internal/model"
	"jobprep_backend/internal/repository"
	"jobprep_backend/internal/util"
)

func newMockTestService(t *testing.T) (*MockTestService, *fakeProvider, *model.User) {
	t.Helper()
	db := newTestDB(t)
	fp := newFakeProvider()
	svc := NewMockTestService(repository.NewMockTestRepository(db), newTestAI(fp))
	return svc, fp, createTestUser(t, db, "tester@example.com")
}

func TestGenerateTestQuestionCountBoundaries(t *testing.T) {
	svc, fp, user := newMockTestService(t)
	ctx := context.Background()

	cases := []struct {
		count  int
		wantOK bool
	}{
		{4, false},
		{5, true},
		{50, true},
		{51, false},
	}
	for _, tc := range cases {
		fp.responses[OpMockTest] = generatedTestJSON(tc.count)
		res, err := svc.Generate(ctx, user.ID, GenerateTestInput{Topic: "Go", Difficulty: "medium", QuestionCount: tc.count})
		if tc.wantOK {
			if err != nil {
				t.Fatalf("count=%d: unexpected error %v", tc.count, err)
			}
			if res.QuestionCount != tc.count || res.Duration != MockTestDuration(tc.count) {
				t.Fatalf("count=%d: got=%+v", tc.count, res)
			}
			continue
		}
		if util.HTTPStatus(codeOf(err)) != 400 {
			t.Fatalf("count=%d: got=%v want 400", tc.count, err)
		}
	}
	if n := fp.callCount(OpMockTest); n != 2 {
		t.Fatalf("generation calls: got=%d want=2", n)
	}
}

func codeOf(err error) util.Code {
	if ae, ok := util.AsAppError(err); ok {
		return ae.Code
	}
	return ""
}

func TestMockTestDurationRoundsUp(t *testing.T) {
	for count, want := range map[int]int{5: 8, 10: 15, 7: 11, 50: 75} {
		if got := MockTestDuration(count); got != want {
			t.Fatalf("MockTestDuration(%d): got=%d want=%d", count, got, want)
		}
	}
}

func TestGenerateTestRejectsBadDifficulty(t *testing.T) {
	svc, _, user := newMockTestService(t)
	_, err := svc.Generate(context.Background(), user.ID, GenerateTestInput{Topic: "Go", Difficulty: "extreme", QuestionCount: 10})
	if !util.IsCode(err, util.CodeInvalidInput) {
		t.Fatalf("got=%v want INVALID_INPUT", err)
	}
}

func TestGenerationFailureWritesNoRows(t *testing.T) {
	svc, fp, user := newMockTestService(t)
	ctx := context.Background()

	fp.responses[OpMockTest] = `{"title":"broken","questions":[{"question":"q","optionA":"a","optionB":"b","optionC":"c","optionD":"d","correctAnswer":"Z"}]}`
	if _, err := svc.Generate(ctx, user.ID, GenerateTestInput{Topic: "Go", Difficulty: "easy", QuestionCount: 5}); !errors.Is(err, util.ErrGenerationParse) {
		t.Fatalf("got=%v want parse failure", err)
	}

	tests, err := svc.List(ctx, user.ID)
	if err != nil || len(tests) != 0 {
		t.Fatalf("tests after failure: got=%+v err=%v", tests, err)
	}
}

func TestSubmitHalfAnsweredCountsMissingAsIncorrect(t *testing.T) {
	svc, fp, user := newMockTestService(t)
	ctx := context.Background()

	fp.responses[OpMockTest] = generatedTestJSON(6)
	gen, err := svc.Generate(ctx, user.ID, GenerateTestInput{Topic: "SQL", Difficulty: "easy", QuestionCount: 6})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	detail, err := svc.Get(ctx, gen.TestID)
	if err != nil || len(detail.Questions) != 6 {
		t.Fatalf("Get: got=%+v err=%v", detail, err)
	}

	// 前三题作答：两题正确（A、B），一题错误
	answers := map[string]string{
		strconv.Itoa(int(detail.Questions[0].ID)): "A",
		strconv.Itoa(int(detail.Questions[1].ID)): "b",
		strconv.Itoa(int(detail.Questions[2].ID)): "A",
	}
	taken := 300
	res, err := svc.Submit(ctx, gen.TestID, user.ID, SubmitTestInput{Answers: answers, TimeTaken: &taken})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Score != 2 || res.TotalQuestions != 6 || res.Percentage != 33 {
		t.Fatalf("result: got score=%d total=%d pct=%d want 2/6/33", res.Score, res.TotalQuestions, res.Percentage)
	}
	if res.Results[5].UserAnswer != "" || res.Results[5].IsCorrect {
		t.Fatalf("unanswered question: got=%+v", res.Results[5])
	}

	// 再次作答会追加一条记录
	full := map[string]string{}
	letters := []string{"A", "B", "C", "D"}
	for i, q := range detail.Questions {
		full[strconv.Itoa(int(q.ID))] = letters[i%4]
	}
	if _, err := svc.Submit(ctx, gen.TestID, user.ID, SubmitTestInput{Answers: full, TimeTaken: &taken}); err != nil {
		t.Fatalf("second Submit: %v", err)
	}

	history, err := svc.Results(ctx, user.ID)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if history.Stats.TotalTests != 2 || history.Stats.BestScore != 100 || history.Stats.AverageScore != 67 {
		t.Fatalf("stats: got=%+v", history.Stats)
	}

	list, err := svc.List(ctx, user.ID)
	if err != nil || len(list) != 1 || list[0].AttemptCount != 2 || list[0].QuestionCount != 6 {
		t.Fatalf("list: got=%+v err=%v", list, err)
	}

	detailRes, err := svc.Result(ctx, res.ResultID, user.ID)
	if err != nil || detailRes.Percentage != 33 || len(detailRes.DetailedResults) != 6 {
		t.Fatalf("Result: got=%+v err=%v", detailRes, err)
	}
	if _, err := svc.Result(ctx, res.ResultID, user.ID+100); !util.IsCode(err, util.CodeNotFound) {
		t.Fatalf("foreign result: got=%v want NOT_FOUND", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc, _, user := newMockTestService(t)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, 1, user.ID, SubmitTestInput{}); !util.IsCode(err, util.CodeMissingRequiredFields) {
		t.Fatalf("missing timeTaken: got=%v", err)
	}
	negative := -1
	if _, err := svc.Submit(ctx, 1, user.ID, SubmitTestInput{TimeTaken: &negative}); !util.IsCode(err, util.CodeInvalidInput) {
		t.Fatalf("negative timeTaken: got=%v", err)
	}
	zero := 0
	if _, err := svc.Submit(ctx, 999, user.ID, SubmitTestInput{TimeTaken: &zero}); !util.IsCode(err, util.CodeNotFound) {
		t.Fatalf("unknown test: got=%v", err)
	}
}

func TestGenerateForRoleStoresRoleAsTopic(t *testing.T) {
	svc, fp, user := newMockTestService(t)
	fp.responses[OpRoleTest] = generatedTestJSON(5)

	res, err := svc.GenerateForRole(context.Background(), user.ID, GenerateRoleTestInput{JobRole: "Data Engineer", ExperienceLevel: "senior", QuestionCount: 5})
	if err != nil {
		t.Fatalf("GenerateForRole: %v", err)
	}
	if res.Topic != "Data Engineer" || res.Difficulty != util.DifficultyMedium {
		t.Fatalf("got=%+v", res)
	}
}
