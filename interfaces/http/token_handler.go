package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"social-calendar/domain/model"
	"social-calendar/infrastructure/logger"
	"social-calendar/usecase"
)

type ITokenHandler interface {
	ExpirySweep(ctx *gin.Context)
	HealthCheck(ctx *gin.Context)
}

type TokenHandler struct {
	tokenUsecase usecase.ITokenUsecase
}

func NewTokenHandler(uc usecase.ITokenUsecase) ITokenHandler {
	return &TokenHandler{tokenUsecase: uc}
}

// ExpirySweep refreshes or warns about tokens expiring inside the warning
// window. Externally triggered, same as the publisher run.
func (h *TokenHandler) ExpirySweep(ctx *gin.Context) {
	res, err := h.tokenUsecase.ExpirySweep(ctx.Request.Context())
	if err != nil {
		logger.GetLogger().WithField("error", err.Error()).Error("expiry sweep failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, res)
}

func (h *TokenHandler) HealthCheck(ctx *gin.Context) {
	brandID, err := strconv.ParseInt(ctx.Param("brandId"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid brand id"})
		return
	}
	var provider *model.Provider
	if raw := ctx.Query("provider"); raw != "" {
		p := model.Provider(raw)
		provider = &p
	}
	res, err := h.tokenUsecase.HealthCheck(ctx.Request.Context(), brandID, provider)
	if err != nil {
		logger.GetLogger().WithField("brand_id", brandID).WithField("error", err.Error()).Error("token health check failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, res)
}
