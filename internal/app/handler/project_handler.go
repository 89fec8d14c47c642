package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sasanhatam/Damonservice/internal/app/ds"
	"github.com/sasanhatam/Damonservice/internal/app/dto"
)

// ============ ДОМЕН ПРОЕКТЫ И ЧАТ ============

func projectToDTO(p ds.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		UserID:    p.UserID,
		CreatedAt: p.CreatedAt,
	}
}

// CreateProject создает проект
// @Summary Создание проекта
// @Description Создает проект для группировки запросов текущего пользователя
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProjectRequest true "Имя проекта"
// @Success 201 {object} dto.ProjectResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/projects [post]
func (h *APIHandler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	userID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	project, err := h.Repository.CreateProject(userID, req.Name)
	if err != nil {
		logrus.Error("Error creating project: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка создания проекта")
		return
	}

	c.JSON(http.StatusCreated, projectToDTO(*project))
}

// ListMyProjects проекты текущего пользователя
// @Summary Список проектов текущего пользователя
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ProjectListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/projects [get]
func (h *APIHandler) ListMyProjects(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	projects, err := h.Repository.ListUserProjects(userID)
	if err != nil {
		logrus.Error("Error listing projects: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения проектов")
		return
	}

	dtoProjects := make([]dto.ProjectResponse, len(projects))
	for i, p := range projects {
		dtoProjects[i] = projectToDTO(p)
	}
	c.JSON(http.StatusOK, dto.ProjectListResponse{
		Projects: dtoProjects,
		Total:    len(dtoProjects),
	})
}

// ListProjectSummaries сводки по всем проектам для панели администратора
// @Summary Сводки по всем проектам
// @Description Для каждого проекта: владелец, непрочитанные сообщения сотрудника и последняя активность; сортировка по активности (только для администраторов)
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ProjectSummaryResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/projects/summaries [get]
func (h *APIHandler) ListProjectSummaries(c *gin.Context) {
	summaries, err := h.Repository.ProjectSummaries()
	if err != nil {
		logrus.Error("Error listing project summaries: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения сводок")
		return
	}

	resp := make([]dto.ProjectSummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = dto.ProjectSummaryResponse{
			ProjectResponse: projectToDTO(s.Project),
			UserFullName:    s.UserFullName,
			UnreadCount:     s.UnreadCount,
			LastActivity:    s.LastActivity,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// AddComment добавляет сообщение в чат проекта
// @Summary Сообщение в чат проекта
// @Description Добавляет сообщение в чат; сотрудник пишет только в своих проектах, администратор в любых
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID проекта"
// @Param request body dto.AddCommentRequest true "Текст сообщения"
// @Success 201 {object} dto.CommentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/projects/{id}/comments [post]
func (h *APIHandler) AddComment(c *gin.Context) {
	projectID, ok := h.parseProjectID(c)
	if !ok {
		return
	}

	var req dto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	if !h.checkProjectAccess(c, projectID) {
		return
	}

	userID, userRole, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}
	user, err := h.Repository.GetUserByID(userID)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Пользователь не найден")
		return
	}

	comment := ds.Comment{
		ProjectID:    projectID,
		UserID:       userID,
		UserFullName: user.FullName,
		Role:         userRole,
		Content:      req.Content,
	}
	if err := h.Repository.AddComment(&comment); err != nil {
		logrus.Error("Error adding comment: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка отправки сообщения")
		return
	}

	c.JSON(http.StatusCreated, commentToDTO(comment))
}

func commentToDTO(cm ds.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:           cm.ID,
		ProjectID:    cm.ProjectID,
		UserID:       cm.UserID,
		UserFullName: cm.UserFullName,
		Role:         cm.Role.String(),
		Content:      cm.Content,
		CreatedAt:    cm.CreatedAt,
		IsRead:       cm.IsRead,
	}
}

// ListComments история чата проекта
// @Summary История чата проекта
// @Description Возвращает сообщения проекта в хронологическом порядке
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID проекта"
// @Success 200 {array} dto.CommentResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/projects/{id}/comments [get]
func (h *APIHandler) ListComments(c *gin.Context) {
	projectID, ok := h.parseProjectID(c)
	if !ok {
		return
	}
	if !h.checkProjectAccess(c, projectID) {
		return
	}

	comments, err := h.Repository.ListProjectComments(projectID)
	if err != nil {
		logrus.Error("Error listing comments: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения сообщений")
		return
	}

	resp := make([]dto.CommentResponse, len(comments))
	for i, cm := range comments {
		resp[i] = commentToDTO(cm)
	}
	c.JSON(http.StatusOK, resp)
}

// MarkCommentsRead помечает чужие сообщения прочитанными
// @Summary Отметка сообщений прочитанными
// @Description Помечает прочитанными сообщения противоположной роли в чате проекта
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID проекта"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/projects/{id}/comments/read [post]
func (h *APIHandler) MarkCommentsRead(c *gin.Context) {
	projectID, ok := h.parseProjectID(c)
	if !ok {
		return
	}
	if !h.checkProjectAccess(c, projectID) {
		return
	}

	_, userRole, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	if err := h.Repository.MarkCommentsRead(projectID, userRole); err != nil {
		logrus.Error("Error marking comments read: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка обновления сообщений")
		return
	}

	h.successResponse(c, http.StatusOK, "Сообщения отмечены прочитанными", nil)
}

// GetUnreadCount бейдж непрочитанных сообщений сотрудника
// @Summary Счетчик непрочитанных сообщений
// @Description Возвращает число непрочитанных сообщений администраторов по всем проектам текущего пользователя
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UnreadCountResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/projects/unread [get]
func (h *APIHandler) GetUnreadCount(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	count, err := h.Repository.CountUnreadForUser(userID)
	if err != nil {
		logrus.Error("Error counting unread: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка подсчета сообщений")
		return
	}

	c.JSON(http.StatusOK, dto.UnreadCountResponse{Count: count})
}

func (h *APIHandler) parseProjectID(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID проекта")
		return 0, false
	}
	return uint(id), true
}
