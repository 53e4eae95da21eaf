package handlers_test

import (
	"context"
	"time"

	"github.com/spec-kit/registration-service/internal/domain"
	"github.com/spec-kit/registration-service/internal/repository"
)

type memRegistrationRepo struct {
	regs map[string]*domain.Registration
}

func newMemRegistrationRepo() *memRegistrationRepo {
	return &memRegistrationRepo{regs: make(map[string]*domain.Registration)}
}

func (m *memRegistrationRepo) Create(ctx context.Context, reg *domain.Registration) error {
	reg.CreatedAt = time.Now()
	m.regs[reg.ID] = reg
	return nil
}

func (m *memRegistrationRepo) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	reg, ok := m.regs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return reg, nil
}

func (m *memRegistrationRepo) GetByPhone(ctx context.Context, phone string) (*domain.Registration, error) {
	for _, reg := range m.regs {
		if reg.Phone == phone {
			return reg, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRegistrationRepo) CodeInUse(ctx context.Context, code string) (bool, error) {
	for _, reg := range m.regs {
		if reg.UniqueCode != nil && *reg.UniqueCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRegistrationRepo) Approve(ctx context.Context, id, code, operator string) error {
	reg, ok := m.regs[id]
	if !ok {
		return repository.ErrNotFound
	}
	if reg.Status != domain.StatusPending {
		return repository.ErrNotPending
	}
	if taken, _ := m.CodeInUse(ctx, code); taken {
		return repository.ErrCodeTaken
	}
	now := time.Now()
	reg.Status = domain.StatusApproved
	reg.UniqueCode = &code
	reg.ApprovedAt = &now
	reg.ApprovedBy = &operator
	return nil
}

func (m *memRegistrationRepo) Reject(ctx context.Context, id string) error {
	reg, ok := m.regs[id]
	if !ok {
		return repository.ErrNotFound
	}
	reg.Status = domain.StatusRejected
	return nil
}

func (m *memRegistrationRepo) SetTelegramMessageID(ctx context.Context, id string, messageID int) error {
	reg, ok := m.regs[id]
	if !ok {
		return repository.ErrNotFound
	}
	reg.TelegramMessageID = &messageID
	return nil
}

type memSessionRepo struct {
	sessions map[int64]*domain.ApprovalSession
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[int64]*domain.ApprovalSession)}
}

func (m *memSessionRepo) Put(ctx context.Context, session *domain.ApprovalSession) error {
	m.sessions[session.ChatID] = session
	return nil
}

func (m *memSessionRepo) Get(ctx context.Context, chatID int64) (*domain.ApprovalSession, error) {
	session, ok := m.sessions[chatID]
	if !ok {
		return nil, nil
	}
	if session.Expired(time.Now()) {
		delete(m.sessions, chatID)
		return nil, nil
	}
	return session, nil
}

func (m *memSessionRepo) Delete(ctx context.Context, chatID int64) error {
	delete(m.sessions, chatID)
	return nil
}

type fakeNotifier struct {
	nextMsgID int
	prompts   []string
	answered  []string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{nextMsgID: 100}
}

func (f *fakeNotifier) SendOperatorPrompt(ctx context.Context, reg *domain.Registration) (int, error) {
	f.prompts = append(f.prompts, reg.ID)
	f.nextMsgID++
	return f.nextMsgID, nil
}

func (f *fakeNotifier) Reply(ctx context.Context, chatID int64, text string, replyTo int) error {
	return nil
}

func (f *fakeNotifier) EditPrompt(ctx context.Context, messageID int, text string) error {
	return nil
}

func (f *fakeNotifier) AnswerCallback(ctx context.Context, callbackID string) error {
	f.answered = append(f.answered, callbackID)
	return nil
}
