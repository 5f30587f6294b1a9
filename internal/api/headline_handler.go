package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/IVAO-US/DivisionWebsite-sub000/internal/service"
)

// HeadlineHandler 首页横幅接口
type HeadlineHandler struct {
	headlineService *service.HeadlineService
	logger          *logrus.Logger
}

// NewHeadlineHandler 创建 HeadlineHandler
func NewHeadlineHandler(headlineService *service.HeadlineService, logger *logrus.Logger) *HeadlineHandler {
	return &HeadlineHandler{
		headlineService: headlineService,
		logger:          logger,
	}
}

// Current 当前横幅决策；headline 为 null 时前端不渲染横幅
// GET /api/headline
func (h *HeadlineHandler) Current(c *gin.Context) {
	headline, err := h.headlineService.Current(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("横幅决策失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"headline": headline})
}
