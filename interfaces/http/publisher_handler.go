package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"social-calendar/domain/dto"
	"social-calendar/infrastructure/logger"
	"social-calendar/usecase"
)

type IPublisherHandler interface {
	Run(ctx *gin.Context)
	Retry(ctx *gin.Context)
	Schedule(ctx *gin.Context)
	ListJobs(ctx *gin.Context)
}

type PublisherHandler struct {
	publisherUsecase usecase.IPublisherUsecase
}

func NewPublisherHandler(uc usecase.IPublisherUsecase) IPublisherHandler {
	return &PublisherHandler{publisherUsecase: uc}
}

// Run triggers one batch sweep of due jobs. The scheduler (cron, Cloud
// Scheduler) calls this; there is no in-process timer.
func (h *PublisherHandler) Run(ctx *gin.Context) {
	res, err := h.publisherUsecase.RunDue(ctx.Request.Context())
	if err != nil {
		logger.GetLogger().WithField("error", err.Error()).Error("publisher run failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, res)
}

func (h *PublisherHandler) Retry(ctx *gin.Context) {
	draftID, err := strconv.ParseInt(ctx.Param("draftId"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid draft id"})
		return
	}
	res, err := h.publisherUsecase.RetryDraft(ctx.Request.Context(), draftID)
	if err != nil {
		logger.GetLogger().WithField("draft_id", draftID).WithField("error", err.Error()).Error("retry failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, res)
}

func (h *PublisherHandler) Schedule(ctx *gin.Context) {
	draftID, err := strconv.ParseInt(ctx.Param("draftId"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid draft id"})
		return
	}
	var req dto.ScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	jobs, err := h.publisherUsecase.ScheduleDraft(ctx.Request.Context(), draftID, req)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (h *PublisherHandler) ListJobs(ctx *gin.Context) {
	draftID, err := strconv.ParseInt(ctx.Param("draftId"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid draft id"})
		return
	}
	jobs, err := h.publisherUsecase.ListJobs(ctx.Request.Context(), draftID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"jobs": jobs})
}
