package service

import (
	"indosat_lms_backend/internal/model"
	"indosat_lms_backend/internal/util"
	"indosat_lms_backend/pkg/logger"
	"indosat_lms_backend/pkg/monitoring"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuizStore 测验及结果的持久化入口
type QuizStore interface {
	Create(quiz *model.Quiz) error
	FindByModuleID(moduleID string) (*model.Quiz, error)
	SaveResult(result *model.QuizResult) error
	FindResultsByUser(userID string) ([]model.QuizResult, error)
}

// ProgressUpdater 模块完成后的课程进度联动
type ProgressUpdater interface {
	CompleteModule(moduleID, userID string) error
}

// ModuleOwnerResolver 经由模块定位课程创建者，测验配置的权限依据
type ModuleOwnerResolver interface {
	ResolveModuleOwner(moduleID string) (string, error)
}

// PointsAwarder 通过测验后发放积分（含徽章复查与排行榜缓存失效）
type PointsAwarder interface {
	AwardPoints(userID string, points int) error
}

// QuizService 管理所有活跃答题会话。会话驻留内存，结果落库尽力而为：
// 学员看到的分数以本地计分为准，远端写入失败只记日志、不阻塞。
type QuizService struct {
	QuizRepo  QuizStore
	Ownership ModuleOwnerResolver
	Progress  ProgressUpdater
	Rewards   PointsAwarder

	mu       sync.Mutex
	sessions map[string]*QuizSession
	schedule scheduleFunc
}

// 遗留会话清扫参数：学员提交或弃答后超过 sessionMaxIdle 无任何交互即回收
const (
	sessionSweepInterval = 15 * time.Minute
	sessionMaxIdle       = 2 * time.Hour
)

func NewQuizService(quizRepo QuizStore, ownership ModuleOwnerResolver, progress ProgressUpdater, rewards PointsAwarder) *QuizService {
	s := &QuizService{
		QuizRepo:  quizRepo,
		Ownership: ownership,
		Progress:  progress,
		Rewards:   rewards,
		sessions:  make(map[string]*QuizSession),
		schedule:  scheduleAfterFunc,
	}

	go func() {
		ticker := time.NewTicker(sessionSweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			s.EvictIdle(sessionMaxIdle)
		}
	}()

	return s
}

// CreateQuiz 培训师为模块配置测验，仅限模块所属课程的创建者；
// 入库前校验每题正确项指向有效选项
func (s *QuizService) CreateQuiz(userID string, quiz *model.Quiz) error {
	if len(quiz.Questions) == 0 {
		return util.ErrQuizNoQuestions
	}
	for _, q := range quiz.Questions {
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return util.ErrInvalidAnswerIndex
		}
	}

	owner, err := s.Ownership.ResolveModuleOwner(quiz.ModuleID)
	if err != nil {
		return err
	}
	if owner != userID {
		return util.ErrPermissionDenied
	}

	if quiz.PassingScore <= 0 {
		quiz.PassingScore = 70
	}
	return s.QuizRepo.Create(quiz)
}

// StartAttempt 为指定模块开启一次答题会话。
// 模块无测验返回 ErrQuizNotFound（可返回上级页面，不可重试），
// 零题测验返回 ErrQuizNoQuestions（配置错误）。
func (s *QuizService) StartAttempt(userID, moduleID string) (*AttemptView, error) {
	quiz, err := s.QuizRepo.FindByModuleID(moduleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	session, err := newQuizSession(userID, moduleID, quiz, s.schedule, s.onScored)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	monitoring.ActiveQuizAttempts.Inc()

	return session.Snapshot(), nil
}

func (s *QuizService) findSession(attemptID, userID string) (*QuizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[attemptID]
	if !ok || session.UserID != userID {
		return nil, util.ErrAttemptNotFound
	}
	return session, nil
}

func (s *QuizService) GetAttempt(attemptID, userID string) (*AttemptView, error) {
	session, err := s.findSession(attemptID, userID)
	if err != nil {
		return nil, err
	}
	return session.Snapshot(), nil
}

func (s *QuizService) SelectAnswer(attemptID, userID string, optionIndex int) (*AttemptView, error) {
	session, err := s.findSession(attemptID, userID)
	if err != nil {
		return nil, err
	}
	if err := session.SelectAnswer(optionIndex); err != nil {
		return nil, err
	}
	return session.Snapshot(), nil
}

func (s *QuizService) NextQuestion(attemptID, userID string) (*AttemptView, error) {
	session, err := s.findSession(attemptID, userID)
	if err != nil {
		return nil, err
	}
	session.Next()
	return session.Snapshot(), nil
}

func (s *QuizService) PreviousQuestion(attemptID, userID string) (*AttemptView, error) {
	session, err := s.findSession(attemptID, userID)
	if err != nil {
		return nil, err
	}
	session.Previous()
	return session.Snapshot(), nil
}

func (s *QuizService) SubmitAttempt(attemptID, userID string) (*AttemptView, error) {
	session, err := s.findSession(attemptID, userID)
	if err != nil {
		return nil, err
	}
	if _, err := session.Submit(); err != nil {
		return nil, err
	}
	return session.Snapshot(), nil
}

func (s *QuizService) RetryAttempt(attemptID, userID string) (*AttemptView, error) {
	session, err := s.findSession(attemptID, userID)
	if err != nil {
		return nil, err
	}
	if err := session.Retry(); err != nil {
		return nil, err
	}
	return session.Snapshot(), nil
}

// ExitAttempt 学员离开：取消倒计时并移除会话
func (s *QuizService) ExitAttempt(attemptID, userID string) error {
	session, err := s.findSession(attemptID, userID)
	if err != nil {
		return err
	}
	session.Close()

	s.mu.Lock()
	delete(s.sessions, attemptID)
	s.mu.Unlock()
	monitoring.ActiveQuizAttempts.Dec()
	return nil
}

// EvictIdle 回收长时间无交互的遗留会话（学员提交或弃答后从未调用退出），
// 防止内存注册表与活跃答题数指标无界增长。返回本次回收数量。
func (s *QuizService) EvictIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	var stale []*QuizSession
	for id, session := range s.sessions {
		if session.LastActive().Before(cutoff) {
			stale = append(stale, session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, session := range stale {
		session.Close()
		monitoring.ActiveQuizAttempts.Dec()
	}
	if len(stale) > 0 {
		logger.Log.Info("evicted idle quiz attempts", zap.Int("count", len(stale)))
	}
	return len(stale)
}

func (s *QuizService) GetResultsByUser(userID string) ([]model.QuizResult, error) {
	return s.QuizRepo.FindResultsByUser(userID)
}

// onScored 计分后的副作用，按序执行：
// 1. 结果落库（失败只记日志，分数展示不依赖写入成功）
// 2. 通过时：标记模块完成，再触发课程进度重算（顺序不可颠倒）
// 3. 通过时发放测验奖励积分
func (s *QuizService) onScored(session *QuizSession, result *model.QuizResult) {
	outcome := "failed"
	if result.Passed {
		outcome = "passed"
	}
	monitoring.QuizSubmissions.WithLabelValues(outcome).Inc()

	if err := s.QuizRepo.SaveResult(result); err != nil {
		logger.Log.Error("failed to persist quiz result",
			zap.String("quizId", result.QuizID),
			zap.String("userId", result.UserID),
			zap.Error(err))
	}

	if !result.Passed {
		return
	}

	if err := s.Progress.CompleteModule(session.ModuleID, session.UserID); err != nil {
		logger.Log.Error("failed to update module completion",
			zap.String("moduleId", session.ModuleID),
			zap.Error(err))
	}

	if session.Quiz.XPBonus > 0 {
		if err := s.Rewards.AwardPoints(session.UserID, session.Quiz.XPBonus); err != nil {
			logger.Log.Error("failed to award quiz points",
				zap.String("userId", session.UserID),
				zap.Error(err))
		}
	}
}
