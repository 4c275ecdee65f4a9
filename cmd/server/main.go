package main

import (
	"log"

	"github.com/devfolio/internal/config"
	"github.com/devfolio/internal/db"
	"github.com/devfolio/internal/handler"
	"github.com/devfolio/internal/logger"
	"github.com/devfolio/internal/router"
	"github.com/devfolio/internal/service"
	"github.com/devfolio/internal/storage"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.LogLevel, cfg.GinMode)
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 按配置初始化管理员账号
	if err := service.NewUserService(db.DB).EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to ensure admin user: %v", err)
	}

	files := storage.NewStore(cfg.UploadDir, cfg.UploadURLPath)
	api := handler.NewAPI(db.DB, files, "")

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, cfg.SessionSecret, cfg.UploadDir, cfg.UploadURLPath)
	logger.Log.WithField("addr", cfg.ListenAddr).Info("server starting")
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
