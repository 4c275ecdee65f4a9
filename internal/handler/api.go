package handler

import (
	"github.com/devfolio/internal/service"
	"github.com/devfolio/internal/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db             *gorm.DB
	files          *storage.Store
	users          *service.UserService
	projects       *service.ProjectService
	technologies   *service.TechnologyService
	skills         *service.SkillService
	experiences    *service.ExperienceService
	educations     *service.EducationService
	certifications *service.CertificationService
	testimonials   *service.TestimonialService
	contacts       *service.ContactService
	dashboard      *service.DashboardService
	siteName       string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, files *storage.Store, siteName string) *API {
	if siteName == "" {
		siteName = "Devfolio"
	}

	return &API{
		db:             gdb,
		files:          files,
		users:          service.NewUserService(gdb),
		projects:       service.NewProjectService(gdb, files),
		technologies:   service.NewTechnologyService(gdb),
		skills:         service.NewSkillService(gdb),
		experiences:    service.NewExperienceService(gdb, files),
		educations:     service.NewEducationService(gdb, files),
		certifications: service.NewCertificationService(gdb, files),
		testimonials:   service.NewTestimonialService(gdb, files),
		contacts:       service.NewContactService(gdb),
		dashboard:      service.NewDashboardService(gdb),
		siteName:       siteName,
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}

// renderHTML 在向模板渲染时附加站点名称。
func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}
	if _, exists := payload["siteName"]; !exists {
		payload["siteName"] = a.siteName
	}
	c.HTML(status, template, payload)
}
