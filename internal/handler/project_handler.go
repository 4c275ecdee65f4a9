package handler

import (
	"errors"
	"net/http"

	"github.com/devfolio/internal/service"
	"github.com/gin-gonic/gin"
)

// projectInputFromForm 从 multipart 表单组装项目输入。
// 未出现在表单里的关联字段保持 nil，以便部分更新时不触碰既有数据。
func (a *API) projectInputFromForm(c *gin.Context) service.ProjectInput {
	input := service.ProjectInput{
		Title:         formString(c, "title"),
		Slug:          formString(c, "slug"),
		Description:   formString(c, "description"),
		Content:       c.PostForm("content"),
		Status:        formString(c, "status"),
		IsFeatured:    formOptionalBool(c, "is_featured"),
		IsPublished:   formOptionalBool(c, "is_published"),
		SortOrder:     formOptionalInt(c, "sort_order"),
		FeaturedImage: formImagePatch(c, "featured_image"),
		Thumbnail:     formImagePatch(c, "thumbnail"),
	}

	if ids, ok := c.GetPostFormArray("technology_ids"); ok {
		input.TechnologyIDs = parseUintValues(ids)
	}

	if titles, ok := c.GetPostFormArray("feature_titles"); ok {
		descriptions := c.PostFormArray("feature_descriptions")
		features := make([]service.ProjectFeatureInput, 0, len(titles))
		for i, title := range titles {
			feature := service.ProjectFeatureInput{Title: title}
			if i < len(descriptions) {
				feature.Description = descriptions[i]
			}
			features = append(features, feature)
		}
		input.Features = features
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		input.GalleryAdd = form.File["gallery"]
	}
	input.GalleryRemove = c.PostFormArray("gallery_remove")

	return input
}

// ShowProjectManagement renders the admin project management page.
func (a *API) ShowProjectManagement(c *gin.Context) {
	result, err := a.projects.List(service.ProjectFilter{
		Search:  c.Query("search"),
		Status:  c.Query("status"),
		Page:    parseIntQuery(c, "page"),
		PerPage: parseIntQuery(c, "per_page"),
	})
	if err != nil {
		a.renderHTML(c, http.StatusInternalServerError, "project_manage.html", gin.H{
			"title": "项目管理",
			"error": "加载项目列表失败",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "project_manage.html", gin.H{
		"title":  "项目管理",
		"result": result,
	})
}

// ListProjects returns projects matching the query filters.
func (a *API) ListProjects(c *gin.Context) {
	result, err := a.projects.List(service.ProjectFilter{
		Search:       c.Query("search"),
		Status:       c.Query("status"),
		TechnologyID: parseUintQuery(c, "technology_id"),
		Featured:     parseBoolQuery(c, "featured"),
		Published:    parseBoolQuery(c, "published"),
		OrderBy:      c.Query("order_by"),
		OrderDesc:    isTruthy(c.Query("order_desc")),
		Page:         parseIntQuery(c, "page"),
		PerPage:      parseIntQuery(c, "per_page"),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取项目列表失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       result.Items,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"per_page":    result.PerPage,
	})
}

// GetProject returns one project with associations.
func (a *API) GetProject(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的项目ID")
		return
	}

	item, err := a.projects.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			respondError(c, http.StatusNotFound, "项目不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取项目失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// CreateProject creates a new project from the submitted form.
func (a *API) CreateProject(c *gin.Context) {
	input := a.projectInputFromForm(c)
	input.UserID = currentUserID(c)

	item, err := a.projects.Create(input)
	if err != nil {
		a.respondProjectError(c, err, "创建项目失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "项目已创建", "item": item})
}

// UpdateProject applies a partial update to an existing project.
func (a *API) UpdateProject(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的项目ID")
		return
	}

	item, err := a.projects.Update(id, a.projectInputFromForm(c))
	if err != nil {
		a.respondProjectError(c, err, "更新项目失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "项目已更新", "item": item})
}

// DeleteProject removes a project and its stored files.
func (a *API) DeleteProject(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的项目ID")
		return
	}

	if err := a.projects.Delete(id); err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			respondError(c, http.StatusNotFound, "项目不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除项目失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "项目已删除"})
}

// ReorderProjects applies the submitted {id, order} pairs.
func (a *API) ReorderProjects(c *gin.Context) {
	var payload reorderPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	if err := a.projects.Reorder(payload.toUpdates()); err != nil {
		switch {
		case errors.Is(err, service.ErrReorderInvalid):
			respondError(c, http.StatusBadRequest, "排序参数不合法")
		case errors.Is(err, service.ErrProjectNotFound):
			respondError(c, http.StatusNotFound, "项目不存在")
		default:
			respondError(c, http.StatusInternalServerError, "保存排序失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "排序已保存"})
}

// ToggleProjectFeatured flips the featured flag.
func (a *API) ToggleProjectFeatured(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的项目ID")
		return
	}

	item, err := a.projects.ToggleFeatured(id)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			respondError(c, http.StatusNotFound, "项目不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "切换推荐状态失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "推荐状态已更新", "item": item})
}

// ToggleProjectPublished flips the published flag and maintains published_at.
func (a *API) ToggleProjectPublished(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的项目ID")
		return
	}

	item, err := a.projects.TogglePublished(id)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			respondError(c, http.StatusNotFound, "项目不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "切换发布状态失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "发布状态已更新", "item": item})
}

func (a *API) respondProjectError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		respondError(c, http.StatusNotFound, "项目不存在")
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrProjectSlugTaken):
		respondError(c, http.StatusConflict, "Slug 已被占用")
	case errors.Is(err, service.ErrProjectStatusInvalid):
		respondError(c, http.StatusBadRequest, "项目状态无效")
	case errors.Is(err, service.ErrTechnologyRefInvalid):
		respondError(c, http.StatusBadRequest, "关联的技术不存在")
	default:
		respondError(c, http.StatusInternalServerError, fallback)
	}
}

func parseUintValues(values []string) []uint {
	ids := make([]uint, 0, len(values))
	for _, raw := range values {
		id := parseUintString(raw)
		if id == 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
