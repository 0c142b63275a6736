package service

import (
	"indosat_lms_backend/internal/model"
	"indosat_lms_backend/internal/util"
	"sync"
	"time"
)

// TimerHandle 可取消的倒计时句柄。每个活跃答题会话至多持有一个，
// 所有退出路径（提交/重试/离开）必须调用 Stop 取消，而不是在回调里检查标志。
type TimerHandle interface {
	Stop() bool
}

type scheduleFunc func(d time.Duration, fn func()) TimerHandle

type afterFuncTimer struct {
	t *time.Timer
}

func (a afterFuncTimer) Stop() bool {
	return a.t.Stop()
}

func scheduleAfterFunc(d time.Duration, fn func()) TimerHandle {
	return afterFuncTimer{t: time.AfterFunc(d, fn)}
}

// QuizSession 驱动一名学员对一份测验的一次完整尝试：
// 题目导航、选项选择、倒计时、提交计分。提交后进入终态，
// 未通过时可重试（重置答案与计时，不产生新测验实体）。
type QuizSession struct {
	ID       string
	UserID   string
	ModuleID string
	Quiz     *model.Quiz

	mu        sync.Mutex
	current   int
	answers   []int
	submitted bool
	result    *model.QuizResult
	timer     TimerHandle
	deadline  time.Time
	// gen 尝试代数。每次取消倒计时递增；到期回调携带调度时的代数，
	// 代数不匹配说明该尝试已结束（提交/重试/离开），回调作废。
	// time.AfterFunc 的 Stop 对已在途的回调返回 false，只拦截不到这种情况。
	gen uint64
	// touched 最近一次学员交互时间，供遗留会话清扫判定空闲时长
	touched time.Time

	schedule scheduleFunc
	now      func() time.Time
	// onScored 计分后的完成回调（持久化结果、模块完成、课程进度重算），
	// 在锁外调用且每次尝试至多触发一次
	onScored func(s *QuizSession, result *model.QuizResult)
}

func newQuizSession(userID, moduleID string, quiz *model.Quiz, schedule scheduleFunc, onScored func(*QuizSession, *model.QuizResult)) (*QuizSession, error) {
	if len(quiz.Questions) == 0 {
		// 零题测验是配置错误，绝不能参与计分
		return nil, util.ErrQuizNoQuestions
	}

	s := &QuizSession{
		ID:       model.GenerateUUID(),
		UserID:   userID,
		ModuleID: moduleID,
		Quiz:     quiz,
		answers:  newAnswerSheet(len(quiz.Questions)),
		schedule: schedule,
		now:      time.Now,
		onScored: onScored,
	}
	s.touched = s.now()
	s.startTimer()
	return s, nil
}

func newAnswerSheet(n int) []int {
	answers := make([]int, n)
	for i := range answers {
		answers[i] = model.AnswerUnselected
	}
	return answers
}

// startTimer 调用方需持有锁或保证独占访问
func (s *QuizSession) startTimer() {
	if s.Quiz.TimeLimit <= 0 {
		return
	}
	d := time.Duration(s.Quiz.TimeLimit) * time.Minute
	s.deadline = s.now().Add(d)
	gen := s.gen
	s.timer = s.schedule(d, func() { s.expire(gen) })
}

// stopTimer 取消倒计时并递增代数，使任何在途的到期回调作废。调用方需持有锁
func (s *QuizSession) stopTimer() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// expire 时限到期：强制提交，不论答题是否完整。
// 只有代数仍然匹配的回调才生效，过期尝试的回调静默丢弃。
func (s *QuizSession) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.submitted {
		s.mu.Unlock()
		return
	}
	s.finishLocked()
}

// SelectAnswer 覆盖当前题目的已选项；提交后拒绝，不自动跳题
func (s *QuizSession) SelectAnswer(optionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()

	if s.submitted {
		return util.ErrAttemptSubmitted
	}
	if optionIndex < 0 || optionIndex >= len(s.Quiz.Questions[s.current].Options) {
		return util.ErrInvalidAnswerIndex
	}
	s.answers[s.current] = optionIndex
	return nil
}

// Next 前进一题，越界时停在最后一题
func (s *QuizSession) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()
	if s.current < len(s.Quiz.Questions)-1 {
		s.current++
	}
	return s.current
}

// Previous 后退一题，越界时停在第一题
func (s *QuizSession) Previous() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()
	if s.current > 0 {
		s.current--
	}
	return s.current
}

// Submit 显式提交，要求每题都已作答；提交幂等，
// 重复调用返回已记录的结果，不重新计分也不追加记录
func (s *QuizSession) Submit() (*model.QuizResult, error) {
	s.mu.Lock()
	s.touched = s.now()

	if s.submitted {
		result := s.result
		s.mu.Unlock()
		return result, nil
	}

	for _, a := range s.answers {
		if a == model.AnswerUnselected {
			s.mu.Unlock()
			return nil, util.ErrAttemptIncomplete
		}
	}

	return s.finishLocked(), nil
}

// finishLocked 计分并置终态。调用方持锁进入；本函数负责释放锁，
// 并在锁外触发 onScored。
func (s *QuizSession) finishLocked() *model.QuizResult {
	// 状态离开 InProgress，先取消倒计时再计分
	s.stopTimer()

	correct := 0
	for i, q := range s.Quiz.Questions {
		if s.answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	score := 100 * float64(correct) / float64(len(s.Quiz.Questions))
	passed := score >= float64(s.Quiz.PassingScore)

	answers := make([]int, len(s.answers))
	copy(answers, s.answers)

	s.result = &model.QuizResult{
		QuizID:      s.Quiz.ID,
		UserID:      s.UserID,
		Score:       score,
		Passed:      passed,
		Answers:     answers,
		CompletedAt: s.now(),
	}
	s.submitted = true

	result := s.result
	hook := s.onScored
	s.mu.Unlock()

	if hook != nil {
		hook(s, result)
	}
	return result
}

// Retry 仅在未通过时可用：清空答案、回到第一题、重置倒计时。
// 不产生新的测验实体，只是一次全新尝试。
func (s *QuizSession) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()

	if !s.submitted {
		return util.ErrAttemptInProgress
	}
	if s.result != nil && s.result.Passed {
		return util.ErrRetryAfterPass
	}

	s.stopTimer()
	s.answers = newAnswerSheet(len(s.Quiz.Questions))
	s.current = 0
	s.submitted = false
	s.result = nil
	s.startTimer()
	return nil
}

// Close 学员离开会话，取消倒计时
func (s *QuizSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimer()
}

// LastActive 最近一次学员交互时间
func (s *QuizSession) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// RemainingSeconds 剩余秒数；不限时返回 0
func (s *QuizSession) RemainingSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Quiz.TimeLimit <= 0 || s.submitted {
		return 0
	}
	remaining := s.deadline.Sub(s.now())
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds())
}

// Snapshot 当前会话视图；未提交时不暴露正确答案与解析
func (s *QuizSession) Snapshot() *AttemptView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()

	view := &AttemptView{
		ID:            s.ID,
		QuizID:        s.Quiz.ID,
		ModuleID:      s.ModuleID,
		Title:         s.Quiz.Title,
		PassingScore:  s.Quiz.PassingScore,
		QuestionIndex: s.current,
		Submitted:     s.submitted,
		Answers:       append([]int(nil), s.answers...),
	}

	if s.Quiz.TimeLimit > 0 && !s.submitted {
		remaining := s.deadline.Sub(s.now())
		if remaining > 0 {
			view.RemainingSeconds = int(remaining.Seconds())
		}
	}

	for _, q := range s.Quiz.Questions {
		qv := QuestionView{
			ID:      q.ID,
			Text:    q.Text,
			Options: q.Options,
		}
		if s.submitted {
			correct := q.CorrectAnswer
			qv.CorrectAnswer = &correct
			qv.Explanation = q.Explanation
		}
		view.Questions = append(view.Questions, qv)
	}

	if s.submitted && s.result != nil {
		view.Result = s.result
	}
	return view
}

// AttemptView 答题会话对外视图
// swagger:model AttemptView
type AttemptView struct {
	ID               string            `json:"id"`
	QuizID           string            `json:"quizId"`
	ModuleID         string            `json:"moduleId"`
	Title            string            `json:"title"`
	PassingScore     int               `json:"passingScore"`
	QuestionIndex    int               `json:"questionIndex"`
	Questions        []QuestionView    `json:"questions"`
	Answers          []int             `json:"answers"`
	RemainingSeconds int               `json:"remainingSeconds"`
	Submitted        bool              `json:"submitted"`
	Result           *model.QuizResult `json:"result,omitempty"`
}

// QuestionView 提交前隐藏正确答案与解析
type QuestionView struct {
	ID            string   `json:"id"`
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}
