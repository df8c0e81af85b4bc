package usecase

import (
	"social-calendar/domain/model"
)

// AggregateDraftStatus derives a draft's status from its jobs. Precedence:
// a mix of success and anything else is partially_published, all success is
// published, all failed is failed, otherwise work remains and the draft
// stays scheduled. The protected "draft" state and drafts without jobs are
// left untouched.
func AggregateDraftStatus(current string, jobs []*model.PostJob) string {
	if current == model.DraftStatusDraft || len(jobs) == 0 {
		return current
	}
	var success, failed, other int
	for _, j := range jobs {
		switch {
		case j.Succeeded():
			success++
		case j.Status == model.JobStatusFailed:
			failed++
		default:
			other++
		}
	}
	switch {
	case success > 0 && (failed > 0 || other > 0):
		return model.DraftStatusPartiallyPublished
	case success == len(jobs):
		return model.DraftStatusPublished
	case failed == len(jobs):
		return model.DraftStatusFailed
	default:
		return model.DraftStatusScheduled
	}
}
