package usecase

import (
	"context"
	"fmt"
	"time"

	"social-calendar/domain/dto"
	"social-calendar/domain/model"
	"social-calendar/domain/repository"
	"social-calendar/infrastructure/clients/platforms"
	"social-calendar/infrastructure/logger"
	"social-calendar/infrastructure/notification"
	"social-calendar/infrastructure/vault"
)

type IPublisherUsecase interface {
	// RunDue processes one batch of due jobs sequentially and returns the
	// sweep counters. A job-level failure never aborts the sweep.
	RunDue(ctx context.Context) (*dto.RunResult, error)
	// RetryDraft re-dispatches the draft's failed jobs through the normal
	// pipeline and returns the per-job outcomes plus the new draft status.
	RetryDraft(ctx context.Context, draftID int64) (*dto.RetryResult, error)
	// ScheduleDraft creates one job per requested channel for an approved
	// draft. The jobs snapshot the schedule time at creation.
	ScheduleDraft(ctx context.Context, draftID int64, req dto.ScheduleRequest) ([]*model.PostJob, error)
	ListJobs(ctx context.Context, draftID int64) ([]*model.PostJob, error)
}

type publisherUsecase struct {
	jobRepo     repository.IPostJob
	draftRepo   repository.IDraft
	accountRepo repository.ISocialAccount
	recordRepo  repository.IPublishRecord
	archive     repository.IPublishRecordArchive // optional
	vault       *vault.TokenVault
	registry    platforms.Registry
	notifier    notification.INotifier
	batchSize   int
}

func NewPublisherUsecase(
	jobRepo repository.IPostJob,
	draftRepo repository.IDraft,
	accountRepo repository.ISocialAccount,
	recordRepo repository.IPublishRecord,
	archive repository.IPublishRecordArchive,
	tokenVault *vault.TokenVault,
	registry platforms.Registry,
	notifier notification.INotifier,
	batchSize int,
) IPublisherUsecase {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &publisherUsecase{
		jobRepo:     jobRepo,
		draftRepo:   draftRepo,
		accountRepo: accountRepo,
		recordRepo:  recordRepo,
		archive:     archive,
		vault:       tokenVault,
		registry:    registry,
		notifier:    notifier,
		batchSize:   batchSize,
	}
}

func (u *publisherUsecase) RunDue(ctx context.Context) (*dto.RunResult, error) {
	lg := logger.GetLogger()
	res := &dto.RunResult{Errors: []string{}}

	jobs, err := u.jobRepo.ListDue(ctx, time.Now().UTC(), u.batchSize)
	if err != nil {
		return nil, fmt.Errorf("list due jobs: %w", err)
	}

	drafts := map[int64]*model.Draft{}
	accountsByBrand := map[int64]map[model.Provider]*model.SocialAccount{}
	succeededByDraft := map[int64][]*model.PostJob{}

	for _, job := range jobs {
		res.Processed++

		draft, ok := drafts[job.DraftID]
		if !ok {
			draft, err = u.draftRepo.GetByID(ctx, job.DraftID)
			if err != nil {
				res.Failed++
				res.Errors = append(res.Errors, fmt.Sprintf("job %d: load draft: %v", job.ID, err))
				continue
			}
			drafts[job.DraftID] = draft
		}

		accounts, ok := accountsByBrand[job.BrandID]
		if !ok {
			accounts, err = u.accountRepo.ListConnectedByBrand(ctx, job.BrandID)
			if err != nil {
				res.Failed++
				res.Errors = append(res.Errors, fmt.Sprintf("job %d: load accounts: %v", job.ID, err))
				continue
			}
			accountsByBrand[job.BrandID] = accounts
		}

		outcome, err := u.dispatchJob(ctx, job, draft, accounts)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("job %d: %v", job.ID, err))
			continue
		}
		if outcome == nil { // claimed elsewhere
			continue
		}
		if outcome.Success {
			res.Published++
			succeededByDraft[job.DraftID] = append(succeededByDraft[job.DraftID], job)
		} else {
			res.Failed++
			if outcome.Error != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("job %d: %s", job.ID, *outcome.Error))
			}
		}

		if err := u.refreshDraftStatus(ctx, draft); err != nil {
			lg.WithField("draft_id", job.DraftID).WithField("error", err.Error()).Warn("draft status refresh failed")
		}
	}

	if u.notifier != nil {
		for draftID, published := range succeededByDraft {
			u.notifier.NotifyPostPublished(ctx, drafts[draftID], published)
		}
	}
	return res, nil
}

func (u *publisherUsecase) RetryDraft(ctx context.Context, draftID int64) (*dto.RetryResult, error) {
	draft, err := u.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	failed, err := u.jobRepo.ListFailed(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("list failed jobs: %w", err)
	}

	res := &dto.RetryResult{DraftStatus: draft.Status, Jobs: []dto.RetryJobOutcome{}}
	if len(failed) == 0 {
		return res, nil
	}

	accounts, err := u.accountRepo.ListConnectedByBrand(ctx, draft.BrandID)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	var published []*model.PostJob
	for _, job := range failed {
		out := dto.RetryJobOutcome{JobID: job.ID, Channel: string(job.Channel)}
		outcome, err := u.dispatchJob(ctx, job, draft, accounts)
		switch {
		case err != nil:
			out.Status = model.JobStatusFailed
			out.Error = err.Error()
		case outcome == nil:
			out.Status = model.JobStatusPublishing
		case outcome.Success:
			out.Status = model.JobStatusSuccess
			res.Retried++
			published = append(published, job)
		default:
			out.Status = model.JobStatusFailed
			res.Retried++
			if outcome.Error != nil {
				out.Error = *outcome.Error
			}
		}
		res.Jobs = append(res.Jobs, out)
	}

	if err := u.refreshDraftStatus(ctx, draft); err != nil {
		return nil, err
	}
	res.DraftStatus = draft.Status

	if u.notifier != nil && len(published) > 0 {
		u.notifier.NotifyPostPublished(ctx, draft, published)
	}
	return res, nil
}

func (u *publisherUsecase) ScheduleDraft(ctx context.Context, draftID int64, req dto.ScheduleRequest) ([]*model.PostJob, error) {
	draft, err := u.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if !draft.Approved {
		return nil, fmt.Errorf("draft %d is not approved", draftID)
	}

	channels := make([]model.Channel, 0, len(req.Channels))
	for _, raw := range req.Channels {
		ch := model.Channel(raw)
		if _, ok := model.ProviderForChannel(ch); !ok {
			return nil, fmt.Errorf("unknown channel %q", raw)
		}
		channels = append(channels, ch)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("no channels requested")
	}

	scheduledAt := time.Now().UTC()
	if req.ScheduledAt != "" {
		scheduledAt, err = time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduled_at: %w", err)
		}
		scheduledAt = scheduledAt.UTC()
	}

	jobs, err := u.jobRepo.CreateJobsForDraft(ctx, draft, channels, scheduledAt)
	if err != nil {
		return nil, fmt.Errorf("create jobs: %w", err)
	}

	// Scheduling is an explicit user action, so leaving the protected state
	// here is allowed. Automatic aggregation never does this.
	if draft.Status == model.DraftStatusDraft {
		if err := u.draftRepo.UpdateStatus(ctx, draftID, model.DraftStatusScheduled); err != nil {
			return nil, fmt.Errorf("update draft status: %w", err)
		}
	}
	return jobs, nil
}

func (u *publisherUsecase) ListJobs(ctx context.Context, draftID int64) ([]*model.PostJob, error) {
	return u.jobRepo.ListByDraft(ctx, draftID)
}

// dispatchJob runs one publish attempt end to end. A nil outcome with nil
// error means the claim was lost to a concurrent invocation. The returned
// outcome is already persisted on the job.
func (u *publisherUsecase) dispatchJob(ctx context.Context, job *model.PostJob, draft *model.Draft, accounts map[model.Provider]*model.SocialAccount) (*model.JobOutcome, error) {
	claimed, err := u.jobRepo.MarkPublishing(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("claim: %w", err)
	}
	if !claimed {
		return nil, nil
	}

	rec := &model.PublishRecord{
		DraftID:   draft.ID,
		PostJobID: job.ID,
		Channel:   job.Channel,
		Status:    model.RecordStatusQueued,
	}

	provider, ok := model.ProviderForChannel(job.Channel)
	if !ok {
		return u.finish(ctx, job, rec, failedOutcome(model.ErrUnsupportedChannel))
	}
	adapter, ok := u.registry.Get(provider)
	if !ok {
		return u.finish(ctx, job, rec, failedOutcome(model.ErrUnsupportedChannel))
	}

	account := accounts[provider]
	if account == nil {
		return u.finish(ctx, job, rec, failedOutcome(model.ErrNoConnectedAccount))
	}
	rec.SocialAccountID = &account.ID

	if account.TokenExpired(time.Now().UTC()) {
		return u.finish(ctx, job, rec, failedOutcome(model.ErrTokenExpired))
	}

	token, err := u.vault.Unseal(account.AccessTokenEnc)
	if err != nil {
		return u.finish(ctx, job, rec, failedOutcome(model.ErrTokenUnsealFailed))
	}

	// The queued row is persisted before the platform call: a process dying
	// mid-publish must still leave evidence of the attempt.
	if recID, err := u.recordRepo.Create(ctx, rec); err != nil {
		logger.GetLogger().WithField("post_job_id", job.ID).WithField("error", err.Error()).Warn("publish record create failed")
	} else {
		rec.ID = recID
	}

	result, err := adapter.Publish(ctx, draft, job.Channel, account, token)
	if err != nil {
		msg := err.Error()
		return u.finish(ctx, job, rec, model.JobOutcome{Error: &msg})
	}
	return u.finish(ctx, job, rec, model.JobOutcome{
		Success:        true,
		ExternalPostID: &result.ExternalID,
		ExternalURL:    &result.ExternalURL,
	})
}

// finish persists the attempt on the job, completes the ledger row and
// mirrors it into the archive.
func (u *publisherUsecase) finish(ctx context.Context, job *model.PostJob, rec *model.PublishRecord, outcome model.JobOutcome) (*model.JobOutcome, error) {
	lg := logger.GetLogger()

	if err := u.jobRepo.MarkResult(ctx, job.ID, outcome); err != nil {
		return nil, fmt.Errorf("persist outcome: %w", err)
	}
	if outcome.Success {
		job.Status = model.JobStatusSuccess
		job.Error = nil
	} else {
		job.Status = model.JobStatusFailed
		job.Error = outcome.Error
	}
	job.ExternalPostID = outcome.ExternalPostID
	job.ExternalURL = outcome.ExternalURL
	job.Attempt++

	// Jobs failed by a pre-call guard never got their queued row.
	if rec.ID == 0 {
		recID, err := u.recordRepo.Create(ctx, rec)
		if err != nil {
			lg.WithField("post_job_id", job.ID).WithField("error", err.Error()).Warn("publish record create failed")
			return &outcome, nil
		}
		rec.ID = recID
	}
	status := model.RecordStatusFailed
	if outcome.Success {
		status = model.RecordStatusSuccess
	}
	if err := u.recordRepo.Complete(ctx, rec.ID, status, outcome.ExternalPostID, outcome.ExternalURL, outcome.Error); err != nil {
		lg.WithField("post_job_id", job.ID).WithField("error", err.Error()).Warn("publish record complete failed")
	}
	rec.Status = status
	rec.ExternalPostID = outcome.ExternalPostID
	rec.ExternalURL = outcome.ExternalURL
	rec.Error = outcome.Error
	if u.archive != nil {
		u.archive.Archive(ctx, rec)
	}
	return &outcome, nil
}

// refreshDraftStatus recomputes the aggregate from the draft's jobs and
// persists it when it moved. The draft struct is updated in place.
func (u *publisherUsecase) refreshDraftStatus(ctx context.Context, draft *model.Draft) error {
	jobs, err := u.jobRepo.ListByDraft(ctx, draft.ID)
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}
	next := AggregateDraftStatus(draft.Status, jobs)
	if next == draft.Status {
		return nil
	}
	if err := u.draftRepo.UpdateStatus(ctx, draft.ID, next); err != nil {
		return fmt.Errorf("update draft status: %w", err)
	}
	draft.Status = next
	return nil
}

func failedOutcome(code string) model.JobOutcome {
	return model.JobOutcome{Error: &code}
}
