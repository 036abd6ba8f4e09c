package router

import (
	"context"
	"errors"
	"strconv"

	"anu-agent-go/internal/api/handler"
	"anu-agent-go/internal/config"
	"anu-agent-go/internal/storage"
	"anu-agent-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
	"gorm.io/gorm"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, cfg *config.Config, candidateHandler *handler.CandidateHandler) {
	api := h.Group("/api/v1")

	// 配置了API Key时启用钥匙认证，健康检查保持开放
	if cfg.Server.APIKey != "" {
		api.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:X-API-Key", ""),
			keyauth.WithFilter(func(c context.Context, ctx *app.RequestContext) bool {
				return string(ctx.Path()) == "/api/v1/health"
			}),
			keyauth.WithValidator(func(c context.Context, ctx *app.RequestContext, key string) (bool, error) {
				return key == cfg.Server.APIKey, nil
			}),
			keyauth.WithErrorHandler(func(c context.Context, ctx *app.RequestContext, err error) {
				ctx.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"error": "无效的API Key"})
			}),
		))
	}

	api.POST("/candidates/documents", func(c context.Context, ctx *app.RequestContext) {
		// 获取上传的文件
		cvHeader, err := ctx.FormFile("cv")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "CV文件未找到"})
			return
		}
		diceHeader, err := ctx.FormFile("dice")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "DICE文件未找到"})
			return
		}

		cvFile, err := cvHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开CV文件失败"})
			return
		}
		defer cvFile.Close()

		diceFile, err := diceHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开DICE文件失败"})
			return
		}
		defer diceFile.Close()

		resp, err := candidateHandler.HandleDocumentUpload(
			c,
			cvFile, cvHeader.Filename,
			diceFile, diceHeader.Filename,
		)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}

		ctx.JSON(consts.StatusOK, resp)
	})

	api.POST("/candidates/process", func(c context.Context, ctx *app.RequestContext) {
		var req handler.ProcessCandidateRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}

		result, err := candidateHandler.HandleProcessCandidate(c, req)
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
			return
		}

		// 管道内部错误已收敛到结果的status字段，映射到HTTP状态码
		if result.Status == types.StatusError {
			ctx.JSON(consts.StatusInternalServerError, result)
			return
		}
		ctx.JSON(consts.StatusOK, result)
	})

	api.GET("/candidates/records/:uuid", func(c context.Context, ctx *app.RequestContext) {
		recordUUID := ctx.Param("uuid")
		record, err := candidateHandler.HandleGetRecord(c, recordUUID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(consts.StatusNotFound, utils.H{"error": "记录不存在"})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, record)
	})

	api.GET("/candidates/records", func(c context.Context, ctx *app.RequestContext) {
		limit := 50
		if raw := ctx.Query("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				limit = parsed
			}
		}
		records, err := candidateHandler.HandleListRecords(c, limit)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"records": records, "count": len(records)})
	})

	api.GET("/candidates/results/:email", func(c context.Context, ctx *app.RequestContext) {
		email := ctx.Param("email")
		result, err := candidateHandler.HandleGetCachedResult(c, email)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				ctx.JSON(consts.StatusNotFound, utils.H{"error": "缓存结果不存在或已过期"})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, result)
	})

	// 添加健康检查
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}
