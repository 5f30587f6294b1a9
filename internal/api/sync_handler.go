package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/IVAO-US/DivisionWebsite-sub000/internal/service"
)

// SyncHandler 运维接口：手动触发同步与对账
type SyncHandler struct {
	syncService      *service.SyncService
	reconcileService *service.ReconcileService
	logger           *logrus.Logger
}

// NewSyncHandler 创建 SyncHandler（与定时任务共用同一份服务实例，单飞保护才有效）
func NewSyncHandler(syncService *service.SyncService, reconcileService *service.ReconcileService, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		syncService:      syncService,
		reconcileService: reconcileService,
		logger:           logger,
	}
}

// RunSync 触发一次表单日志同步
// POST /sync/run?force=1  force=1 时从日志头重扫
func (h *SyncHandler) RunSync(c *gin.Context) {
	force := c.Query("force") == "1"

	res, err := h.syncService.Run(c.Request.Context(), force)
	if err != nil {
		if errors.Is(err, service.ErrJobRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("同步失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}

// RunReconcile 触发一轮取消对账
// POST /sync/reconcile?include_past=1  include_past=1 时回溯全部历史会话
func (h *SyncHandler) RunReconcile(c *gin.Context) {
	includePast := c.Query("include_past") == "1"

	deleted, err := h.reconcileService.Run(c.Request.Context(), includePast)
	if err != nil {
		if errors.Is(err, service.ErrJobRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		// 对账fail-fast：已删除的进度一并返回，方便运维判断
		h.logger.WithError(err).Error("对账失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "deleted": deleted})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
