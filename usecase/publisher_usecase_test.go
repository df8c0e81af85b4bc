package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-calendar/domain/dto"
	"social-calendar/domain/model"
	"social-calendar/infrastructure/clients/platforms"
	"social-calendar/infrastructure/vault"
	"social-calendar/usecase"
)

const testVaultKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

type publisherFixture struct {
	jobRepo     *MockPostJobRepo
	draftRepo   *MockDraftRepo
	accountRepo *MockAccountRepo
	recordRepo  *MockRecordRepo
	notifier    *MockNotifier
	adapter     *MockAdapter
	vault       *vault.TokenVault
	uc          usecase.IPublisherUsecase
}

func newPublisherFixture(t *testing.T) *publisherFixture {
	v, err := vault.NewTokenVault(testVaultKey)
	require.NoError(t, err)

	f := &publisherFixture{
		jobRepo:     new(MockPostJobRepo),
		draftRepo:   new(MockDraftRepo),
		accountRepo: new(MockAccountRepo),
		recordRepo:  new(MockRecordRepo),
		notifier:    new(MockNotifier),
		adapter:     &MockAdapter{provider: model.ProviderFacebook},
		vault:       v,
	}
	registry := platforms.Registry{model.ProviderFacebook: f.adapter}
	f.uc = usecase.NewPublisherUsecase(f.jobRepo, f.draftRepo, f.accountRepo, f.recordRepo, nil, v, registry, f.notifier, 50)
	return f
}

func (f *publisherFixture) sealedAccount(t *testing.T, plaintext string, expiresAt *time.Time) *model.SocialAccount {
	enc, err := f.vault.Seal(plaintext)
	require.NoError(t, err)
	return &model.SocialAccount{
		ID:                31,
		BrandID:           2,
		Provider:          model.ProviderFacebook,
		ExternalAccountID: "page-900",
		Handle:            "acme",
		AccessTokenEnc:    enc,
		TokenExpiresAt:    expiresAt,
		Status:            model.AccountStatusConnected,
	}
}

func futureTime(d time.Duration) *time.Time {
	t := time.Now().UTC().Add(d)
	return &t
}

func TestRunDue_PublishesDueJob(t *testing.T) {
	f := newPublisherFixture(t)

	draft := &model.Draft{ID: 1, BrandID: 2, Status: model.DraftStatusScheduled, Approved: true, Copy: "launch day"}
	job := &model.PostJob{ID: 11, DraftID: 1, BrandID: 2, Channel: model.ChannelFacebook, Status: model.JobStatusPending}
	account := f.sealedAccount(t, "user-token", futureTime(30*24*time.Hour))

	f.jobRepo.On("ListDue", mock.Anything, mock.Anything, 50).Return([]*model.PostJob{job}, nil)
	f.draftRepo.On("GetByID", mock.Anything, int64(1)).Return(draft, nil)
	f.accountRepo.On("ListConnectedByBrand", mock.Anything, int64(2)).
		Return(map[model.Provider]*model.SocialAccount{model.ProviderFacebook: account}, nil)
	f.jobRepo.On("MarkPublishing", mock.Anything, int64(11)).Return(true, nil)
	f.adapter.On("Publish", mock.Anything, draft, model.ChannelFacebook, account, "user-token").
		Return(&platforms.PublishResult{ExternalID: "fb_123", ExternalURL: "https://www.facebook.com/fb_123"}, nil)
	f.jobRepo.On("MarkResult", mock.Anything, int64(11), mock.MatchedBy(func(o model.JobOutcome) bool {
		return o.Success && o.ExternalPostID != nil && *o.ExternalPostID == "fb_123"
	})).Return(nil)
	f.recordRepo.On("Create", mock.Anything, mock.Anything).Return(int64(7), nil)
	f.recordRepo.On("Complete", mock.Anything, int64(7), model.RecordStatusSuccess, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.jobRepo.On("ListByDraft", mock.Anything, int64(1)).Return([]*model.PostJob{job}, nil)
	f.draftRepo.On("UpdateStatus", mock.Anything, int64(1), model.DraftStatusPublished).Return(nil)
	f.notifier.On("NotifyPostPublished", mock.Anything, draft, mock.Anything).Return()

	res, err := f.uc.RunDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Published)
	assert.Equal(t, 0, res.Failed)
	f.jobRepo.AssertExpectations(t)
	f.adapter.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestRunDue_NoConnectedAccount(t *testing.T) {
	f := newPublisherFixture(t)

	draft := &model.Draft{ID: 1, BrandID: 2, Status: model.DraftStatusScheduled, Approved: true}
	job := &model.PostJob{ID: 11, DraftID: 1, BrandID: 2, Channel: model.ChannelFacebook, Status: model.JobStatusPending}

	f.jobRepo.On("ListDue", mock.Anything, mock.Anything, 50).Return([]*model.PostJob{job}, nil)
	f.draftRepo.On("GetByID", mock.Anything, int64(1)).Return(draft, nil)
	f.accountRepo.On("ListConnectedByBrand", mock.Anything, int64(2)).
		Return(map[model.Provider]*model.SocialAccount{}, nil)
	f.jobRepo.On("MarkPublishing", mock.Anything, int64(11)).Return(true, nil)
	f.jobRepo.On("MarkResult", mock.Anything, int64(11), mock.MatchedBy(func(o model.JobOutcome) bool {
		return !o.Success && o.Error != nil && *o.Error == model.ErrNoConnectedAccount
	})).Return(nil)
	f.recordRepo.On("Create", mock.Anything, mock.Anything).Return(int64(7), nil)
	f.recordRepo.On("Complete", mock.Anything, int64(7), model.RecordStatusFailed, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.jobRepo.On("ListByDraft", mock.Anything, int64(1)).Return([]*model.PostJob{job}, nil)
	f.draftRepo.On("UpdateStatus", mock.Anything, int64(1), model.DraftStatusFailed).Return(nil)

	res, err := f.uc.RunDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 0, res.Published)
	assert.Equal(t, 1, res.Failed)
	f.adapter.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "NotifyPostPublished", mock.Anything, mock.Anything, mock.Anything)
	f.jobRepo.AssertExpectations(t)
}

func TestRunDue_ExpiredTokenSkipsPlatformCall(t *testing.T) {
	f := newPublisherFixture(t)

	draft := &model.Draft{ID: 1, BrandID: 2, Status: model.DraftStatusScheduled, Approved: true}
	job := &model.PostJob{ID: 11, DraftID: 1, BrandID: 2, Channel: model.ChannelFacebook, Status: model.JobStatusPending}
	expired := time.Now().UTC().Add(-time.Hour)
	account := f.sealedAccount(t, "user-token", &expired)

	f.jobRepo.On("ListDue", mock.Anything, mock.Anything, 50).Return([]*model.PostJob{job}, nil)
	f.draftRepo.On("GetByID", mock.Anything, int64(1)).Return(draft, nil)
	f.accountRepo.On("ListConnectedByBrand", mock.Anything, int64(2)).
		Return(map[model.Provider]*model.SocialAccount{model.ProviderFacebook: account}, nil)
	f.jobRepo.On("MarkPublishing", mock.Anything, int64(11)).Return(true, nil)
	f.jobRepo.On("MarkResult", mock.Anything, int64(11), mock.MatchedBy(func(o model.JobOutcome) bool {
		return !o.Success && o.Error != nil && *o.Error == model.ErrTokenExpired
	})).Return(nil)
	f.recordRepo.On("Create", mock.Anything, mock.Anything).Return(int64(7), nil)
	f.recordRepo.On("Complete", mock.Anything, int64(7), model.RecordStatusFailed, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.jobRepo.On("ListByDraft", mock.Anything, int64(1)).Return([]*model.PostJob{job}, nil)
	f.draftRepo.On("UpdateStatus", mock.Anything, int64(1), model.DraftStatusFailed).Return(nil)

	res, err := f.uc.RunDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	f.adapter.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.jobRepo.AssertExpectations(t)
}

func TestRunDue_ContinuesPastFailures(t *testing.T) {
	f := newPublisherFixture(t)

	draft1 := &model.Draft{ID: 1, BrandID: 2, Status: model.DraftStatusScheduled, Approved: true}
	draft3 := &model.Draft{ID: 3, BrandID: 2, Status: model.DraftStatusScheduled, Approved: true}
	jobs := []*model.PostJob{
		{ID: 11, DraftID: 1, BrandID: 2, Channel: model.ChannelFacebook, Status: model.JobStatusPending},
		{ID: 12, DraftID: 2, BrandID: 2, Channel: model.ChannelFacebook, Status: model.JobStatusPending},
		{ID: 13, DraftID: 3, BrandID: 2, Channel: model.ChannelFacebook, Status: model.JobStatusPending},
	}
	account := f.sealedAccount(t, "user-token", futureTime(30*24*time.Hour))

	f.jobRepo.On("ListDue", mock.Anything, mock.Anything, 50).Return(jobs, nil)
	f.draftRepo.On("GetByID", mock.Anything, int64(1)).Return(draft1, nil)
	f.draftRepo.On("GetByID", mock.Anything, int64(2)).Return(nil, errors.New("draft gone"))
	f.draftRepo.On("GetByID", mock.Anything, int64(3)).Return(draft3, nil)
	f.accountRepo.On("ListConnectedByBrand", mock.Anything, int64(2)).
		Return(map[model.Provider]*model.SocialAccount{model.ProviderFacebook: account}, nil).Once()
	f.jobRepo.On("MarkPublishing", mock.Anything, mock.Anything).Return(true, nil)
	f.adapter.On("Publish", mock.Anything, mock.Anything, model.ChannelFacebook, account, "user-token").
		Return(&platforms.PublishResult{ExternalID: "fb_x", ExternalURL: "https://www.facebook.com/fb_x"}, nil)
	f.jobRepo.On("MarkResult", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.recordRepo.On("Create", mock.Anything, mock.Anything).Return(int64(7), nil)
	f.recordRepo.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.jobRepo.On("ListByDraft", mock.Anything, int64(1)).Return([]*model.PostJob{jobs[0]}, nil)
	f.jobRepo.On("ListByDraft", mock.Anything, int64(3)).Return([]*model.PostJob{jobs[2]}, nil)
	f.draftRepo.On("UpdateStatus", mock.Anything, int64(1), model.DraftStatusPublished).Return(nil)
	f.draftRepo.On("UpdateStatus", mock.Anything, int64(3), model.DraftStatusPublished).Return(nil)
	f.notifier.On("NotifyPostPublished", mock.Anything, mock.Anything, mock.Anything).Return()

	res, err := f.uc.RunDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, 2, res.Published)
	assert.Equal(t, 1, res.Failed)
	assert.Len(t, res.Errors, 1)
	f.notifier.AssertNumberOfCalls(t, "NotifyPostPublished", 2)
}

func TestRetryDraft_RedispatchesFailedJob(t *testing.T) {
	f := newPublisherFixture(t)

	draft := &model.Draft{ID: 1, BrandID: 2, Status: model.DraftStatusFailed, Approved: true}
	prevErr := model.ErrNoConnectedAccount
	job := &model.PostJob{ID: 11, DraftID: 1, BrandID: 2, Channel: model.ChannelFacebook, Status: model.JobStatusFailed, Attempt: 1, Error: &prevErr}
	account := f.sealedAccount(t, "user-token", futureTime(30*24*time.Hour))

	f.draftRepo.On("GetByID", mock.Anything, int64(1)).Return(draft, nil)
	f.jobRepo.On("ListFailed", mock.Anything, int64(1)).Return([]*model.PostJob{job}, nil)
	f.accountRepo.On("ListConnectedByBrand", mock.Anything, int64(2)).
		Return(map[model.Provider]*model.SocialAccount{model.ProviderFacebook: account}, nil)
	f.jobRepo.On("MarkPublishing", mock.Anything, int64(11)).Return(true, nil)
	f.adapter.On("Publish", mock.Anything, draft, model.ChannelFacebook, account, "user-token").
		Return(&platforms.PublishResult{ExternalID: "fb_retry", ExternalURL: "https://www.facebook.com/fb_retry"}, nil)
	f.jobRepo.On("MarkResult", mock.Anything, int64(11), mock.MatchedBy(func(o model.JobOutcome) bool {
		return o.Success
	})).Return(nil)
	f.recordRepo.On("Create", mock.Anything, mock.Anything).Return(int64(9), nil)
	f.recordRepo.On("Complete", mock.Anything, int64(9), model.RecordStatusSuccess, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.jobRepo.On("ListByDraft", mock.Anything, int64(1)).Return([]*model.PostJob{job}, nil)
	f.draftRepo.On("UpdateStatus", mock.Anything, int64(1), model.DraftStatusPublished).Return(nil)
	f.notifier.On("NotifyPostPublished", mock.Anything, draft, mock.Anything).Return()

	res, err := f.uc.RetryDraft(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Retried)
	assert.Equal(t, model.DraftStatusPublished, res.DraftStatus)
	require.Len(t, res.Jobs, 1)
	assert.Equal(t, int64(11), res.Jobs[0].JobID)
	assert.Equal(t, model.JobStatusSuccess, res.Jobs[0].Status)
	// Retry mutates the same row; the in-memory job mirrors the bumped attempt.
	assert.Equal(t, 2, job.Attempt)
	f.jobRepo.AssertExpectations(t)
}

func TestRetryDraft_NoFailedJobs(t *testing.T) {
	f := newPublisherFixture(t)

	draft := &model.Draft{ID: 1, BrandID: 2, Status: model.DraftStatusPublished, Approved: true}
	f.draftRepo.On("GetByID", mock.Anything, int64(1)).Return(draft, nil)
	f.jobRepo.On("ListFailed", mock.Anything, int64(1)).Return([]*model.PostJob{}, nil)

	res, err := f.uc.RetryDraft(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 0, res.Retried)
	assert.Equal(t, model.DraftStatusPublished, res.DraftStatus)
	f.accountRepo.AssertNotCalled(t, "ListConnectedByBrand", mock.Anything, mock.Anything)
	f.draftRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestScheduleDraft_CreatesJobs(t *testing.T) {
	f := newPublisherFixture(t)

	draft := &model.Draft{ID: 1, BrandID: 2, Status: model.DraftStatusDraft, Approved: true}
	scheduledAt := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	created := []*model.PostJob{
		{ID: 11, DraftID: 1, Channel: model.ChannelFacebook, Status: model.JobStatusPending, ScheduledAt: scheduledAt},
		{ID: 12, DraftID: 1, Channel: model.ChannelLinkedIn, Status: model.JobStatusPending, ScheduledAt: scheduledAt},
	}

	f.draftRepo.On("GetByID", mock.Anything, int64(1)).Return(draft, nil)
	f.jobRepo.On("CreateJobsForDraft", mock.Anything, draft, []model.Channel{model.ChannelFacebook, model.ChannelLinkedIn}, scheduledAt).
		Return(created, nil)
	f.draftRepo.On("UpdateStatus", mock.Anything, int64(1), model.DraftStatusScheduled).Return(nil)

	jobs, err := f.uc.ScheduleDraft(context.Background(), 1, dto.ScheduleRequest{
		Channels:    []string{"facebook", "linkedin"},
		ScheduledAt: "2026-09-15T10:00:00Z",
	})

	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	f.jobRepo.AssertExpectations(t)
	f.draftRepo.AssertExpectations(t)
}

func TestScheduleDraft_RejectsUnknownChannel(t *testing.T) {
	f := newPublisherFixture(t)

	draft := &model.Draft{ID: 1, BrandID: 2, Status: model.DraftStatusDraft, Approved: true}
	f.draftRepo.On("GetByID", mock.Anything, int64(1)).Return(draft, nil)

	_, err := f.uc.ScheduleDraft(context.Background(), 1, dto.ScheduleRequest{Channels: []string{"myspace"}})

	require.Error(t, err)
	f.jobRepo.AssertNotCalled(t, "CreateJobsForDraft", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestScheduleDraft_RejectsUnapprovedDraft(t *testing.T) {
	f := newPublisherFixture(t)

	draft := &model.Draft{ID: 1, BrandID: 2, Status: model.DraftStatusDraft, Approved: false}
	f.draftRepo.On("GetByID", mock.Anything, int64(1)).Return(draft, nil)

	_, err := f.uc.ScheduleDraft(context.Background(), 1, dto.ScheduleRequest{Channels: []string{"facebook"}})

	require.Error(t, err)
	f.jobRepo.AssertNotCalled(t, "CreateJobsForDraft", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunDue_QueuedRecordPrecedesPlatformCall(t *testing.T) {
	f := newPublisherFixture(t)

	draft := &model.Draft{ID: 1, BrandID: 2, Status: model.DraftStatusScheduled, Approved: true, Copy: "launch day"}
	job := &model.PostJob{ID: 11, DraftID: 1, BrandID: 2, Channel: model.ChannelFacebook, Status: model.JobStatusPending}
	account := f.sealedAccount(t, "user-token", futureTime(30*24*time.Hour))

	f.jobRepo.On("ListDue", mock.Anything, mock.Anything, 50).Return([]*model.PostJob{job}, nil)
	f.draftRepo.On("GetByID", mock.Anything, int64(1)).Return(draft, nil)
	f.accountRepo.On("ListConnectedByBrand", mock.Anything, int64(2)).
		Return(map[model.Provider]*model.SocialAccount{model.ProviderFacebook: account}, nil)
	f.jobRepo.On("MarkPublishing", mock.Anything, int64(11)).Return(true, nil)

	var queuedPersisted bool
	f.recordRepo.On("Create", mock.Anything, mock.MatchedBy(func(rec *model.PublishRecord) bool {
		return rec.Status == model.RecordStatusQueued && rec.PostJobID == 11 && rec.SocialAccountID != nil
	})).Run(func(_ mock.Arguments) {
		queuedPersisted = true
	}).Return(int64(7), nil)
	f.adapter.On("Publish", mock.Anything, draft, model.ChannelFacebook, account, "user-token").
		Run(func(_ mock.Arguments) {
			assert.True(t, queuedPersisted, "queued record must be written before the platform call")
		}).
		Return(&platforms.PublishResult{ExternalID: "fb_123", ExternalURL: "https://www.facebook.com/fb_123"}, nil)
	f.jobRepo.On("MarkResult", mock.Anything, int64(11), mock.Anything).Return(nil)
	f.recordRepo.On("Complete", mock.Anything, int64(7), model.RecordStatusSuccess, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.jobRepo.On("ListByDraft", mock.Anything, int64(1)).Return([]*model.PostJob{job}, nil)
	f.draftRepo.On("UpdateStatus", mock.Anything, int64(1), model.DraftStatusPublished).Return(nil)
	f.notifier.On("NotifyPostPublished", mock.Anything, draft, mock.Anything).Return()

	res, err := f.uc.RunDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)
	f.recordRepo.AssertNumberOfCalls(t, "Create", 1)
	f.recordRepo.AssertExpectations(t)
	f.adapter.AssertExpectations(t)
}

func TestRetryDraft_ProtectedDraftStateUntouched(t *testing.T) {
	f := newPublisherFixture(t)

	draft := &model.Draft{ID: 1, BrandID: 2, Status: model.DraftStatusDraft, Approved: true}
	prevErr := model.ErrTokenExpired
	job := &model.PostJob{ID: 11, DraftID: 1, BrandID: 2, Channel: model.ChannelFacebook, Status: model.JobStatusFailed, Attempt: 1, Error: &prevErr}
	account := f.sealedAccount(t, "user-token", futureTime(30*24*time.Hour))

	f.draftRepo.On("GetByID", mock.Anything, int64(1)).Return(draft, nil)
	f.jobRepo.On("ListFailed", mock.Anything, int64(1)).Return([]*model.PostJob{job}, nil)
	f.accountRepo.On("ListConnectedByBrand", mock.Anything, int64(2)).
		Return(map[model.Provider]*model.SocialAccount{model.ProviderFacebook: account}, nil)
	f.jobRepo.On("MarkPublishing", mock.Anything, int64(11)).Return(true, nil)
	f.adapter.On("Publish", mock.Anything, draft, model.ChannelFacebook, account, "user-token").
		Return(&platforms.PublishResult{ExternalID: "fb_retry", ExternalURL: "https://www.facebook.com/fb_retry"}, nil)
	f.jobRepo.On("MarkResult", mock.Anything, int64(11), mock.Anything).Return(nil)
	f.recordRepo.On("Create", mock.Anything, mock.Anything).Return(int64(9), nil)
	f.recordRepo.On("Complete", mock.Anything, int64(9), model.RecordStatusSuccess, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.jobRepo.On("ListByDraft", mock.Anything, int64(1)).Return([]*model.PostJob{job}, nil)
	f.notifier.On("NotifyPostPublished", mock.Anything, draft, mock.Anything).Return()

	res, err := f.uc.RetryDraft(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Retried)
	assert.Equal(t, model.DraftStatusDraft, res.DraftStatus)
	// A stored draft never leaves the protected state through aggregation.
	f.draftRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunDue_ClaimLostToConcurrentRun(t *testing.T) {
	f := newPublisherFixture(t)

	draft := &model.Draft{ID: 1, BrandID: 2, Status: model.DraftStatusScheduled, Approved: true}
	job := &model.PostJob{ID: 11, DraftID: 1, BrandID: 2, Channel: model.ChannelFacebook, Status: model.JobStatusPending}
	account := f.sealedAccount(t, "user-token", futureTime(30*24*time.Hour))

	f.jobRepo.On("ListDue", mock.Anything, mock.Anything, 50).Return([]*model.PostJob{job}, nil)
	f.draftRepo.On("GetByID", mock.Anything, int64(1)).Return(draft, nil)
	f.accountRepo.On("ListConnectedByBrand", mock.Anything, int64(2)).
		Return(map[model.Provider]*model.SocialAccount{model.ProviderFacebook: account}, nil)
	f.jobRepo.On("MarkPublishing", mock.Anything, int64(11)).Return(false, nil)

	res, err := f.uc.RunDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 0, res.Published)
	assert.Equal(t, 0, res.Failed)
	f.adapter.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.jobRepo.AssertNotCalled(t, "MarkResult", mock.Anything, mock.Anything, mock.Anything)
}
