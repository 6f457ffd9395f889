package service_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"quiz_session_backend/internal/model"
	"quiz_session_backend/internal/service"

	"gorm.io/gorm"
)

// In-memory store fakes. They mirror the repository contracts: missing rows
// come back as gorm.ErrRecordNotFound, reads return copies so service-side
// mutation only sticks after Save.

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeQuizStore struct {
	quizzes      map[uint]*model.Quiz
	questions    map[uint][]model.QuizQuestion
	questionsErr map[uint]error
}

func newFakeQuizStore() *fakeQuizStore {
	return &fakeQuizStore{
		quizzes:      make(map[uint]*model.Quiz),
		questions:    make(map[uint][]model.QuizQuestion),
		questionsErr: make(map[uint]error),
	}
}

func (f *fakeQuizStore) FindByID(id uint) (*model.Quiz, error) {
	quiz, ok := f.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	q := *quiz
	return &q, nil
}

func (f *fakeQuizStore) Questions(quizID uint) ([]model.QuizQuestion, error) {
	if err := f.questionsErr[quizID]; err != nil {
		return nil, err
	}
	return append([]model.QuizQuestion(nil), f.questions[quizID]...), nil
}

type fakeSessionStore struct {
	nextID uint
	byID   map[uint]*model.QuizSession
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{byID: make(map[uint]*model.QuizSession)}
}

func cloneSession(s *model.QuizSession) *model.QuizSession {
	c := *s
	c.QuestionOrder = append([]uint(nil), s.QuestionOrder...)
	return &c
}

func (f *fakeSessionStore) Create(sess *model.QuizSession) error {
	f.nextID++
	sess.ID = f.nextID
	f.byID[sess.ID] = cloneSession(sess)
	return nil
}

func (f *fakeSessionStore) FindByToken(token string, userID uint) (*model.QuizSession, error) {
	for _, s := range f.byID {
		if s.Token == token && s.UserID == userID {
			return cloneSession(s), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSessionStore) FindInProgress(quizID, userID uint) (*model.QuizSession, error) {
	for _, s := range f.byID {
		if s.QuizID == quizID && s.UserID == userID && s.Status == model.SessionInProgress {
			return cloneSession(s), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSessionStore) FindByID(id uint) (*model.QuizSession, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneSession(s), nil
}

func (f *fakeSessionStore) ListInProgress() ([]model.QuizSession, error) {
	var out []model.QuizSession
	for id := uint(1); id <= f.nextID; id++ {
		if s, ok := f.byID[id]; ok && s.Status == model.SessionInProgress {
			out = append(out, *cloneSession(s))
		}
	}
	return out, nil
}

func (f *fakeSessionStore) ListByUser(userID uint) ([]model.QuizSession, error) {
	var out []model.QuizSession
	for id := f.nextID; id >= 1; id-- {
		if s, ok := f.byID[id]; ok && s.UserID == userID {
			out = append(out, *cloneSession(s))
		}
	}
	return out, nil
}

func (f *fakeSessionStore) Save(sess *model.QuizSession) error {
	if _, ok := f.byID[sess.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.byID[sess.ID] = cloneSession(sess)
	return nil
}

func (f *fakeSessionStore) FinalizeIfInProgress(id uint, status model.SessionStatus, completedAt time.Time) (bool, error) {
	s, ok := f.byID[id]
	if !ok {
		return false, nil
	}
	if s.Status != model.SessionInProgress {
		return false, nil
	}
	s.Status = status
	t := completedAt
	s.CompletedAt = &t
	return true, nil
}

type fakeAttemptStore struct {
	nextID   uint
	attempts []*model.QuizAttempt
}

func (f *fakeAttemptStore) Find(quizID, userID, questionID uint) (*model.QuizAttempt, error) {
	for _, a := range f.attempts {
		if a.QuizID == quizID && a.UserID == userID && a.QuestionID == questionID {
			c := *a
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAttemptStore) Create(attempt *model.QuizAttempt) error {
	f.nextID++
	attempt.ID = f.nextID
	c := *attempt
	f.attempts = append(f.attempts, &c)
	return nil
}

func (f *fakeAttemptStore) Save(attempt *model.QuizAttempt) error {
	for i, a := range f.attempts {
		if a.ID == attempt.ID {
			c := *attempt
			f.attempts[i] = &c
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeAttemptStore) ListByQuizUser(quizID, userID uint) ([]model.QuizAttempt, error) {
	var out []model.QuizAttempt
	for _, a := range f.attempts {
		if a.QuizID == quizID && a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeSubmissionStore struct {
	subs []*model.QuizSubmission
}

func (f *fakeSubmissionStore) Create(sub *model.QuizSubmission) error {
	for _, existing := range f.subs {
		if existing.SessionID == sub.SessionID {
			return gorm.ErrDuplicatedKey
		}
	}
	if sub.ID == "" {
		sub.ID = model.GenerateUUID()
	}
	c := *sub
	f.subs = append(f.subs, &c)
	return nil
}

func (f *fakeSubmissionStore) FindBySession(sessionID uint) (*model.QuizSubmission, error) {
	for _, s := range f.subs {
		if s.SessionID == sessionID {
			c := *s
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionStore) CountByQuizUser(quizID, userID uint) (int64, error) {
	var n int64
	for _, s := range f.subs {
		if s.QuizID == quizID && s.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeSubmissionStore) ListByUser(userID uint) ([]model.QuizSubmission, error) {
	var out []model.QuizSubmission
	for _, s := range f.subs {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

// engine bundles a service wired to fakes with handles on every fake for
// assertions.
type engine struct {
	svc      *service.QuizSessionService
	clock    *fakeClock
	quizzes  *fakeQuizStore
	sessions *fakeSessionStore
	attempts *fakeAttemptStore
	subs     *fakeSubmissionStore
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	quizzes := newFakeQuizStore()
	sessions := newFakeSessionStore()
	attempts := &fakeAttemptStore{}
	subs := &fakeSubmissionStore{}

	svc := service.NewQuizSessionService(quizzes, sessions, attempts, subs, nil)

	clock := &fakeClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc.Clock = clock
	svc.Rand = rand.New(rand.NewSource(42))

	tokenSeq := 0
	svc.NewToken = func() (string, error) {
		tokenSeq++
		return fmt.Sprintf("tok-%04d", tokenSeq), nil
	}

	return &engine{
		svc:      svc,
		clock:    clock,
		quizzes:  quizzes,
		sessions: sessions,
		attempts: attempts,
		subs:     subs,
	}
}

// seedQuiz registers a published quiz with n questions whose correct answers
// are "A", "B", "C", ...
func (e *engine) seedQuiz(id uint, n int, settings model.QuizSettings) {
	if settings.SchemaVersion == 0 {
		settings.SchemaVersion = 1
	}
	quiz := &model.Quiz{
		Title:       fmt.Sprintf("Quiz %d", id),
		IsPublished: true,
		Settings:    settings,
	}
	quiz.ID = id
	e.quizzes.quizzes[id] = quiz

	questions := make([]model.QuizQuestion, n)
	for i := 0; i < n; i++ {
		q := model.QuizQuestion{
			QuizID:        id,
			QuestionType:  "multiple_choice",
			Content:       fmt.Sprintf("Question %d", i+1),
			CorrectAnswer: string(rune('A' + i)),
			Order:         i,
		}
		q.ID = id*100 + uint(i) + 1
		questions[i] = q
	}
	e.quizzes.questions[id] = questions
}
