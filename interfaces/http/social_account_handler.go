package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"social-calendar/domain/model"
	"social-calendar/usecase"
)

type ISocialAccountHandler interface {
	ListAccounts(ctx *gin.Context)
}

type SocialAccountHandler struct {
	accountUsecase usecase.ISocialAccountUsecase
}

func NewSocialAccountHandler(uc usecase.ISocialAccountUsecase) ISocialAccountHandler {
	return &SocialAccountHandler{accountUsecase: uc}
}

func (h *SocialAccountHandler) ListAccounts(ctx *gin.Context) {
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
	accounts, err := h.accountUsecase.ListAccounts(ctx.Request.Context(), brandID, provider)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"accounts": accounts})
}
