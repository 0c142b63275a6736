package service

import (
	"errors"
	"indosat_lms_backend/internal/model"
	"indosat_lms_backend/internal/util"
	"testing"
	"time"

	"gorm.io/gorm"
)

type fakeQuizStore struct {
	quizzes map[string]*model.Quiz
	results []*model.QuizResult
	saveErr error
	created []*model.Quiz
}

func (f *fakeQuizStore) Create(quiz *model.Quiz) error {
	f.created = append(f.created, quiz)
	return nil
}

func (f *fakeQuizStore) FindByModuleID(moduleID string) (*model.Quiz, error) {
	quiz, ok := f.quizzes[moduleID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return quiz, nil
}

func (f *fakeQuizStore) SaveResult(result *model.QuizResult) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.results = append(f.results, result)
	return nil
}

func (f *fakeQuizStore) FindResultsByUser(userID string) ([]model.QuizResult, error) {
	var out []model.QuizResult
	for _, r := range f.results {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeProgress struct {
	completed [][2]string // moduleID, userID
}

func (f *fakeProgress) CompleteModule(moduleID, userID string) error {
	f.completed = append(f.completed, [2]string{moduleID, userID})
	return nil
}

type fakeOwnership struct {
	owner string
	err   error
}

func (f *fakeOwnership) ResolveModuleOwner(moduleID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.owner, nil
}

type fakeRewards struct {
	awards map[string]int
}

func (f *fakeRewards) AwardPoints(userID string, points int) error {
	if f.awards == nil {
		f.awards = make(map[string]int)
	}
	f.awards[userID] += points
	return nil
}

func newTestQuizService(quizzes map[string]*model.Quiz) (*QuizService, *fakeQuizStore, *fakeProgress, *fakeRewards) {
	store := &fakeQuizStore{quizzes: quizzes}
	progress := &fakeProgress{}
	rewards := &fakeRewards{}
	svc := NewQuizService(store, &fakeOwnership{owner: "trainer-1"}, progress, rewards)
	svc.schedule = (&fakeScheduler{}).Schedule
	return svc, store, progress, rewards
}

func TestCreateQuizValidation(t *testing.T) {
	svc, store, _, _ := newTestQuizService(nil)

	if err := svc.CreateQuiz("trainer-1", &model.Quiz{Title: "empty"}); !errors.Is(err, util.ErrQuizNoQuestions) {
		t.Fatalf("expected ErrQuizNoQuestions, got %v", err)
	}

	bad := newTestQuiz(70, []int{0})
	bad.Questions[0].CorrectAnswer = 9
	if err := svc.CreateQuiz("trainer-1", bad); !errors.Is(err, util.ErrInvalidAnswerIndex) {
		t.Fatalf("expected ErrInvalidAnswerIndex, got %v", err)
	}
	if len(store.created) != 0 {
		t.Fatalf("invalid quiz must not be persisted")
	}

	ok := newTestQuiz(0, []int{0})
	if err := svc.CreateQuiz("trainer-1", ok); err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	if ok.PassingScore != 70 {
		t.Fatalf("passing score = %d, want default 70", ok.PassingScore)
	}
}

func TestCreateQuizRequiresCourseOwnership(t *testing.T) {
	svc, store, _, _ := newTestQuizService(nil)

	quiz := newTestQuiz(70, []int{0})
	if err := svc.CreateQuiz("trainer-2", quiz); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for foreign trainer, got %v", err)
	}
	if len(store.created) != 0 {
		t.Fatalf("foreign trainer's quiz must not be persisted")
	}

	svc.Ownership = &fakeOwnership{err: util.ErrModuleNotFound}
	if err := svc.CreateQuiz("trainer-1", newTestQuiz(70, []int{0})); !errors.Is(err, util.ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound for unknown module, got %v", err)
	}
}

func TestStartAttemptQuizNotFound(t *testing.T) {
	svc, _, _, _ := newTestQuizService(map[string]*model.Quiz{})

	_, err := svc.StartAttempt("user-1", "module-x")
	if !errors.Is(err, util.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestAttemptOwnership(t *testing.T) {
	svc, _, _, _ := newTestQuizService(map[string]*model.Quiz{
		"module-1": newTestQuiz(70, []int{0}),
	})

	view, err := svc.StartAttempt("user-1", "module-1")
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}

	if _, err := svc.GetAttempt(view.ID, "intruder"); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound for foreign user, got %v", err)
	}
	if _, err := svc.GetAttempt("no-such-attempt", "user-1"); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound for unknown id, got %v", err)
	}
}

func TestPassedAttemptTriggersProgressAndPoints(t *testing.T) {
	quiz := newTestQuiz(70, []int{1, 2})
	quiz.XPBonus = 50
	svc, store, progress, rewards := newTestQuizService(map[string]*model.Quiz{
		"module-1": quiz,
	})

	view, err := svc.StartAttempt("user-1", "module-1")
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if _, err := svc.SelectAnswer(view.ID, "user-1", 1); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if _, err := svc.NextQuestion(view.ID, "user-1"); err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if _, err := svc.SelectAnswer(view.ID, "user-1", 2); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	result, err := svc.SubmitAttempt(view.ID, "user-1")
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if result.Result == nil || !result.Result.Passed {
		t.Fatalf("all answers correct must pass")
	}

	if len(store.results) != 1 {
		t.Fatalf("result not persisted")
	}
	if len(progress.completed) != 1 || progress.completed[0] != [2]string{"module-1", "user-1"} {
		t.Fatalf("module completion not recorded: %v", progress.completed)
	}
	if rewards.awards["user-1"] != 50 {
		t.Fatalf("awarded %d points, want 50", rewards.awards["user-1"])
	}
}

func TestFailedAttemptSkipsProgressAndPoints(t *testing.T) {
	quiz := newTestQuiz(70, []int{1, 2})
	quiz.XPBonus = 50
	svc, store, progress, rewards := newTestQuizService(map[string]*model.Quiz{
		"module-1": quiz,
	})

	view, err := svc.StartAttempt("user-1", "module-1")
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if _, err := svc.SelectAnswer(view.ID, "user-1", 0); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if _, err := svc.NextQuestion(view.ID, "user-1"); err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if _, err := svc.SelectAnswer(view.ID, "user-1", 0); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	result, err := svc.SubmitAttempt(view.ID, "user-1")
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if result.Result.Passed {
		t.Fatalf("all answers wrong must not pass")
	}

	// 失败的结果仍然落库，但不触发模块完成也不发积分
	if len(store.results) != 1 {
		t.Fatalf("failed result must still be persisted")
	}
	if len(progress.completed) != 0 {
		t.Fatalf("failed attempt must not complete the module")
	}
	if len(rewards.awards) != 0 {
		t.Fatalf("failed attempt must not award points")
	}
}

func TestPersistFailureDoesNotBlockResult(t *testing.T) {
	svc, store, _, _ := newTestQuizService(map[string]*model.Quiz{
		"module-1": newTestQuiz(70, []int{0}),
	})
	store.saveErr = errors.New("db unavailable")

	view, err := svc.StartAttempt("user-1", "module-1")
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if _, err := svc.SelectAnswer(view.ID, "user-1", 0); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	result, err := svc.SubmitAttempt(view.ID, "user-1")
	if err != nil {
		t.Fatalf("SubmitAttempt must succeed despite persistence failure, got %v", err)
	}
	if result.Result == nil || result.Result.Score != 100 {
		t.Fatalf("local score must be returned even when the write fails")
	}
}

func TestExitAttemptRemovesSession(t *testing.T) {
	svc, _, _, _ := newTestQuizService(map[string]*model.Quiz{
		"module-1": newTestQuiz(70, []int{0}),
	})

	view, err := svc.StartAttempt("user-1", "module-1")
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if err := svc.ExitAttempt(view.ID, "user-1"); err != nil {
		t.Fatalf("ExitAttempt: %v", err)
	}
	if _, err := svc.GetAttempt(view.ID, "user-1"); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Fatalf("session must be gone after exit, got %v", err)
	}
}

func TestEvictIdleAttempts(t *testing.T) {
	svc, _, _, _ := newTestQuizService(map[string]*model.Quiz{
		"module-1": newTestQuiz(70, []int{0}),
	})

	stale, err := svc.StartAttempt("user-1", "module-1")
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	fresh, err := svc.StartAttempt("user-2", "module-1")
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}

	svc.mu.Lock()
	svc.sessions[stale.ID].touched = time.Now().Add(-3 * time.Hour)
	svc.mu.Unlock()

	if n := svc.EvictIdle(2 * time.Hour); n != 1 {
		t.Fatalf("evicted %d sessions, want 1", n)
	}
	if _, err := svc.GetAttempt(stale.ID, "user-1"); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Fatalf("idle session must be gone, got %v", err)
	}
	if _, err := svc.GetAttempt(fresh.ID, "user-2"); err != nil {
		t.Fatalf("active session must survive the sweep: %v", err)
	}
}
