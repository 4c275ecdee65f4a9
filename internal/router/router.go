package router

import (
	"html/template"
	"path/filepath"
	"time"

	"github.com/devfolio/internal/handler"
	"github.com/devfolio/internal/logger"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret, uploadDir, uploadURLPath string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("devfolio_session", store))

	// 加载模板并添加自定义函数
	r.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
	})
	loadTemplates(r)

	// 静态文件服务
	r.Static(uploadURLPath, uploadDir)
	if uploadURLPath != "/uploads" {
		r.Static("/uploads", uploadDir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// 公开页面
	r.GET("/", api.ShowHome)
	r.GET("/about", api.ShowAbout)
	r.GET("/portfolio", api.ShowPortfolio)
	r.GET("/skills", api.ShowSkills)
	r.GET("/testimonials", api.ShowTestimonials)
	r.GET("/project/:slug", api.ShowProject)
	r.POST("/project/:slug/like", api.LikeProject)
	r.POST("/contact", api.SubmitContactMessage)

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/dashboard", api.ShowDashboard)
			auth.GET("/projects", api.ShowProjectManagement)
			auth.GET("/technologies", api.ShowTechnologyManagement)
			auth.GET("/skills", api.ShowSkillManagement)
			auth.GET("/experiences", api.ShowExperienceManagement)
			auth.GET("/educations", api.ShowEducationManagement)
			auth.GET("/certifications", api.ShowCertificationManagement)
			auth.GET("/testimonials", api.ShowTestimonialManagement)
			auth.GET("/messages", api.ShowContactManagement)

			// API路由
			apiGroup := auth.Group("/api")
			{
				apiGroup.GET("/dashboard", api.GetDashboardStats)
				apiGroup.POST("/uploads", api.UploadImage)

				apiGroup.GET("/projects", api.ListProjects)
				apiGroup.GET("/projects/:id", api.GetProject)
				apiGroup.POST("/projects", api.CreateProject)
				apiGroup.PUT("/projects/:id", api.UpdateProject)
				apiGroup.DELETE("/projects/:id", api.DeleteProject)
				apiGroup.POST("/projects/reorder", api.ReorderProjects)
				apiGroup.POST("/projects/:id/toggle-featured", api.ToggleProjectFeatured)
				apiGroup.POST("/projects/:id/toggle-published", api.ToggleProjectPublished)

				apiGroup.GET("/technologies", api.ListTechnologies)
				apiGroup.GET("/technologies/:id", api.GetTechnology)
				apiGroup.POST("/technologies", api.CreateTechnology)
				apiGroup.PUT("/technologies/:id", api.UpdateTechnology)
				apiGroup.DELETE("/technologies/:id", api.DeleteTechnology)
				apiGroup.POST("/technologies/reorder", api.ReorderTechnologies)
				apiGroup.POST("/technologies/:id/toggle-featured", api.ToggleTechnologyFeatured)

				apiGroup.GET("/skills", api.ListSkills)
				apiGroup.POST("/skills", api.CreateSkill)
				apiGroup.PUT("/skills/:id", api.UpdateSkill)
				apiGroup.DELETE("/skills/:id", api.DeleteSkill)
				apiGroup.POST("/skills/reorder", api.ReorderSkills)
				apiGroup.POST("/skills/:id/toggle-highlighted", api.ToggleSkillHighlighted)

				apiGroup.GET("/experiences", api.ListExperiences)
				apiGroup.POST("/experiences", api.CreateExperience)
				apiGroup.PUT("/experiences/:id", api.UpdateExperience)
				apiGroup.DELETE("/experiences/:id", api.DeleteExperience)
				apiGroup.POST("/experiences/reorder", api.ReorderExperiences)

				apiGroup.GET("/educations", api.ListEducations)
				apiGroup.POST("/educations", api.CreateEducation)
				apiGroup.PUT("/educations/:id", api.UpdateEducation)
				apiGroup.DELETE("/educations/:id", api.DeleteEducation)
				apiGroup.POST("/educations/reorder", api.ReorderEducations)

				apiGroup.GET("/certifications", api.ListCertifications)
				apiGroup.POST("/certifications", api.CreateCertification)
				apiGroup.PUT("/certifications/:id", api.UpdateCertification)
				apiGroup.DELETE("/certifications/:id", api.DeleteCertification)
				apiGroup.POST("/certifications/reorder", api.ReorderCertifications)

				apiGroup.GET("/testimonials", api.ListTestimonials)
				apiGroup.POST("/testimonials", api.CreateTestimonial)
				apiGroup.PUT("/testimonials/:id", api.UpdateTestimonial)
				apiGroup.DELETE("/testimonials/:id", api.DeleteTestimonial)
				apiGroup.POST("/testimonials/reorder", api.ReorderTestimonials)
				apiGroup.POST("/testimonials/:id/toggle-featured", api.ToggleTestimonialFeatured)
				apiGroup.POST("/testimonials/:id/toggle-published", api.ToggleTestimonialPublished)

				apiGroup.GET("/messages", api.ListContactMessages)
				apiGroup.GET("/messages/:id", api.GetContactMessage)
				apiGroup.PUT("/messages/:id/status", api.UpdateContactMessageStatus)
				apiGroup.DELETE("/messages/:id", api.DeleteContactMessage)
			}
		}
	}

	return r
}

// loadTemplates 在模板目录存在时加载页面模板，测试环境下允许缺省。
func loadTemplates(r *gin.Engine) {
	pattern := "web/template/**/*.html"
	if matches, err := filepath.Glob(pattern); err == nil && len(matches) > 0 {
		r.LoadHTMLGlob(pattern)
	}
}

// requestLogger 记录每个请求的方法、路径、状态码与耗时。
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Log.WithFields(map[string]interface{}{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request")
	}
}
