package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"social-calendar/domain/model"
	"social-calendar/infrastructure/clients/platforms"
)

// Mock implementations

type MockPostJobRepo struct {
	mock.Mock
}

func (m *MockPostJobRepo) CreateJobsForDraft(ctx context.Context, draft *model.Draft, channels []model.Channel, scheduledAt time.Time) ([]*model.PostJob, error) {
	args := m.Called(ctx, draft, channels, scheduledAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PostJob), args.Error(1)
}

func (m *MockPostJobRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*model.PostJob, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PostJob), args.Error(1)
}

func (m *MockPostJobRepo) ListByDraft(ctx context.Context, draftID int64) ([]*model.PostJob, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PostJob), args.Error(1)
}

func (m *MockPostJobRepo) ListFailed(ctx context.Context, draftID int64) ([]*model.PostJob, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PostJob), args.Error(1)
}

func (m *MockPostJobRepo) GetByID(ctx context.Context, jobID int64) (*model.PostJob, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PostJob), args.Error(1)
}

func (m *MockPostJobRepo) MarkPublishing(ctx context.Context, jobID int64) (bool, error) {
	args := m.Called(ctx, jobID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostJobRepo) MarkResult(ctx context.Context, jobID int64, outcome model.JobOutcome) error {
	args := m.Called(ctx, jobID, outcome)
	return args.Error(0)
}

type MockDraftRepo struct {
	mock.Mock
}

func (m *MockDraftRepo) GetByID(ctx context.Context, draftID int64) (*model.Draft, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Draft), args.Error(1)
}

func (m *MockDraftRepo) UpdateStatus(ctx context.Context, draftID int64, status string) error {
	args := m.Called(ctx, draftID, status)
	return args.Error(0)
}

type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) Upsert(ctx context.Context, account *model.SocialAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id int64) (*model.SocialAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SocialAccount), args.Error(1)
}

func (m *MockAccountRepo) ListConnectedByBrand(ctx context.Context, brandID int64) (map[model.Provider]*model.SocialAccount, error) {
	args := m.Called(ctx, brandID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.Provider]*model.SocialAccount), args.Error(1)
}

func (m *MockAccountRepo) ListByBrand(ctx context.Context, brandID int64, provider *model.Provider) ([]*model.SocialAccount, error) {
	args := m.Called(ctx, brandID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.SocialAccount), args.Error(1)
}

func (m *MockAccountRepo) ListExpiringSoon(ctx context.Context, deadline time.Time) ([]*model.SocialAccount, error) {
	args := m.Called(ctx, deadline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.SocialAccount), args.Error(1)
}

func (m *MockAccountRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockAccountRepo) UpdateTokens(ctx context.Context, id int64, accessTokenEnc string, refreshTokenEnc *string, expiresAt *time.Time) error {
	args := m.Called(ctx, id, accessTokenEnc, refreshTokenEnc, expiresAt)
	return args.Error(0)
}

func (m *MockAccountRepo) UpdateMetadata(ctx context.Context, id int64, metadata []byte) error {
	args := m.Called(ctx, id, metadata)
	return args.Error(0)
}

type MockRecordRepo struct {
	mock.Mock
}

func (m *MockRecordRepo) Create(ctx context.Context, rec *model.PublishRecord) (int64, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordRepo) Complete(ctx context.Context, id int64, status string, externalPostID, externalURL, errMsg *string) error {
	args := m.Called(ctx, id, status, externalPostID, externalURL, errMsg)
	return args.Error(0)
}

func (m *MockRecordRepo) ListByJob(ctx context.Context, postJobID int64) ([]*model.PublishRecord, error) {
	args := m.Called(ctx, postJobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PublishRecord), args.Error(1)
}

type MockBrandRepo struct {
	mock.Mock
}

func (m *MockBrandRepo) GetByID(ctx context.Context, brandID int64) (*model.Brand, error) {
	args := m.Called(ctx, brandID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Brand), args.Error(1)
}

func (m *MockBrandRepo) ListActiveManagers(ctx context.Context, brandID int64) ([]*model.BrandMember, error) {
	args := m.Called(ctx, brandID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.BrandMember), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyPostPublished(ctx context.Context, draft *model.Draft, successfulJobs []*model.PostJob) {
	m.Called(ctx, draft, successfulJobs)
}

func (m *MockNotifier) NotifyTokenExpiring(ctx context.Context, recipients []string, provider model.Provider, daysUntilExpiry int, reconnectLink string) {
	m.Called(ctx, recipients, provider, daysUntilExpiry, reconnectLink)
}

type MockAdapter struct {
	mock.Mock
	provider model.Provider
}

func (m *MockAdapter) Provider() model.Provider { return m.provider }

func (m *MockAdapter) Publish(ctx context.Context, draft *model.Draft, channel model.Channel, account *model.SocialAccount, accessToken string) (*platforms.PublishResult, error) {
	args := m.Called(ctx, draft, channel, account, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platforms.PublishResult), args.Error(1)
}

func (m *MockAdapter) ValidateToken(ctx context.Context, accessToken string) (*platforms.ValidationResult, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platforms.ValidationResult), args.Error(1)
}

func (m *MockAdapter) RefreshToken(ctx context.Context, refreshToken string) (*platforms.RefreshedToken, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platforms.RefreshedToken), args.Error(1)
}
