package handler

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/devfolio/internal/logger"
	"github.com/devfolio/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// renderMarkdown 把项目正文渲染为净化后的 HTML。
func renderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}

// ShowHome renders the public landing page.
func (a *API) ShowHome(c *gin.Context) {
	featured, err := a.projects.ListFeatured(6)
	if err != nil {
		logger.Log.WithError(err).Error("load featured projects")
	}
	skills, err := a.skills.ListHighlighted()
	if err != nil {
		logger.Log.WithError(err).Error("load highlighted skills")
	}
	testimonials, err := a.testimonials.ListFeatured(3)
	if err != nil {
		logger.Log.WithError(err).Error("load featured testimonials")
	}
	years, err := a.experiences.YearsOfExperience(time.Now())
	if err != nil {
		logger.Log.WithError(err).Error("compute years of experience")
	}

	a.renderHTML(c, http.StatusOK, "home.html", gin.H{
		"title":        "首页",
		"projects":     featured,
		"skills":       skills,
		"testimonials": testimonials,
		"years":        years,
	})
}

// ShowAbout renders the about page with career history.
func (a *API) ShowAbout(c *gin.Context) {
	experiences, err := a.experiences.ListAll()
	if err != nil {
		logger.Log.WithError(err).Error("load experiences")
	}
	educations, err := a.educations.ListAll()
	if err != nil {
		logger.Log.WithError(err).Error("load educations")
	}
	certifications, err := a.certifications.List(service.CertificationFilterActive, time.Now())
	if err != nil {
		logger.Log.WithError(err).Error("load certifications")
	}
	groups, err := a.skills.ListGrouped()
	if err != nil {
		logger.Log.WithError(err).Error("load skill groups")
	}
	years, err := a.experiences.YearsOfExperience(time.Now())
	if err != nil {
		logger.Log.WithError(err).Error("compute years of experience")
	}

	a.renderHTML(c, http.StatusOK, "about.html", gin.H{
		"title":          "关于我",
		"experiences":    experiences,
		"educations":     educations,
		"certifications": certifications,
		"skillGroups":    groups,
		"years":          years,
	})
}

// ShowPortfolio renders the public project listing with technology filter.
func (a *API) ShowPortfolio(c *gin.Context) {
	technologyID := parseUintQuery(c, "technology")

	result, err := a.projects.ListPublished(service.ProjectFilter{
		TechnologyID: technologyID,
		Page:         parseIntQuery(c, "page"),
		PerPage:      parseIntQuery(c, "per_page"),
	})
	if err != nil {
		a.renderHTML(c, http.StatusInternalServerError, "portfolio.html", gin.H{
			"title": "作品集",
			"error": "加载项目列表失败",
		})
		return
	}

	technologies, err := a.technologies.ListAll()
	if err != nil {
		logger.Log.WithError(err).Error("load technologies")
	}

	a.renderHTML(c, http.StatusOK, "portfolio.html", gin.H{
		"title":        "作品集",
		"result":       result,
		"technologies": technologies,
		"activeTech":   technologyID,
	})
}

// ShowProject renders one published project by slug and counts the view.
func (a *API) ShowProject(c *gin.Context) {
	item, err := a.projects.GetPublishedBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			a.renderHTML(c, http.StatusNotFound, "404.html", gin.H{"title": "页面不存在"})
			return
		}
		a.renderHTML(c, http.StatusInternalServerError, "project.html", gin.H{
			"title": "项目详情",
			"error": "加载项目失败",
		})
		return
	}

	if err := a.projects.IncrementViews(item.ID); err != nil {
		logger.Log.WithError(err).Warn("increment project views")
	}

	content, err := renderMarkdown(item.Content)
	if err != nil {
		logger.Log.WithError(err).Error("render project content")
	}

	a.renderHTML(c, http.StatusOK, "project.html", gin.H{
		"title":         item.Title,
		"project":       item,
		"content":       content,
		"featuredImage": a.files.URL(item.FeaturedImage),
	})
}

// LikeProject 公开的点赞入口。
func (a *API) LikeProject(c *gin.Context) {
	item, err := a.projects.GetPublishedBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			respondError(c, http.StatusNotFound, "项目不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "操作失败")
		return
	}

	if err := a.projects.IncrementLikes(item.ID); err != nil {
		respondError(c, http.StatusInternalServerError, "操作失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "已点赞"})
}

// ShowSkills renders the public skills page grouped by category.
func (a *API) ShowSkills(c *gin.Context) {
	groups, err := a.skills.ListGrouped()
	if err != nil {
		a.renderHTML(c, http.StatusInternalServerError, "skills.html", gin.H{
			"title": "技能",
			"error": "加载技能失败",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "skills.html", gin.H{
		"title":  "技能",
		"groups": groups,
	})
}

// ShowTestimonials renders the public testimonials page.
func (a *API) ShowTestimonials(c *gin.Context) {
	result, err := a.testimonials.ListPublished(parseIntQuery(c, "page"), parseIntQuery(c, "per_page"))
	if err != nil {
		a.renderHTML(c, http.StatusInternalServerError, "testimonials.html", gin.H{
			"title": "客户评价",
			"error": "加载评价失败",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "testimonials.html", gin.H{
		"title":  "客户评价",
		"result": result,
	})
}
