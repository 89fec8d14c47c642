package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sasanhatam/Damonservice/internal/app/ds"
	"github.com/sasanhatam/Damonservice/internal/app/role"
)

// Методы для проектов и чата

func (r *PostgresRepository) CreateProject(userID uint, name string) (*ds.Project, error) {
	project := ds.Project{
		Name:      name,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := r.db.Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *PostgresRepository) GetProjectByID(id uint) (*ds.Project, error) {
	var project ds.Project
	err := r.db.First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *PostgresRepository) ListUserProjects(userID uint) ([]ds.Project, error) {
	var projects []ds.Project
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (r *PostgresRepository) AddComment(c *ds.Comment) error {
	c.CreatedAt = time.Now()
	c.IsRead = false
	return r.db.Create(c).Error
}

func (r *PostgresRepository) ListProjectComments(projectID uint) ([]ds.Comment, error) {
	var comments []ds.Comment
	err := r.db.Where("project_id = ?", projectID).Order("created_at").Find(&comments).Error
	return comments, err
}

// Пометить прочитанными сообщения противоположной роли в проекте.
// Свои сообщения для автора непрочитанными не бывают
func (r *PostgresRepository) MarkCommentsRead(projectID uint, reader role.Role) error {
	return r.db.Model(&ds.Comment{}).
		Where("project_id = ? AND role = ? AND is_read = ?", projectID, opposite(reader), false).
		Update("is_read", true).Error
}

// Непрочитанное для аудитории = сообщения противоположной роли с is_read=false
func (r *PostgresRepository) CountUnread(projectID uint, audience role.Role) (int, error) {
	var count int64
	err := r.db.Model(&ds.Comment{}).
		Where("project_id = ? AND role = ? AND is_read = ?", projectID, opposite(audience), false).
		Count(&count).Error
	return int(count), err
}

// Бейдж сотрудника: непрочитанные сообщения администратора по всем его проектам
func (r *PostgresRepository) CountUnreadForUser(userID uint) (int, error) {
	var count int64
	err := r.db.Model(&ds.Comment{}).
		Where("role = ? AND is_read = ? AND project_id IN (?)",
			role.Admin, false,
			r.db.Model(&ds.Project{}).Select("id").Where("user_id = ?", userID)).
		Count(&count).Error
	return int(count), err
}

// Сводки по всем проектам для панели администратора
func (r *PostgresRepository) ProjectSummaries() ([]ProjectSummary, error) {
	var projects []ds.Project
	if err := r.db.Find(&projects).Error; err != nil {
		return nil, err
	}

	users, err := r.ListUsers()
	if err != nil {
		return nil, err
	}
	userNames := make(map[uint]string, len(users))
	for _, u := range users {
		userNames[u.ID] = u.FullName
	}

	summaries := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		unread, err := r.CountUnread(p.ID, role.Admin)
		if err != nil {
			return nil, err
		}

		last := p.CreatedAt

		var lastComment ds.Comment
		err = r.db.Where("project_id = ?", p.ID).Order("created_at DESC").First(&lastComment).Error
		if err == nil && lastComment.CreatedAt.After(last) {
			last = lastComment.CreatedAt
		}

		var lastInquiry ds.Inquiry
		err = r.db.Where("project_id = ?", p.ID).Order("created_at DESC").First(&lastInquiry).Error
		if err == nil && lastInquiry.CreatedAt.After(last) {
			last = lastInquiry.CreatedAt
		}

		summaries = append(summaries, ProjectSummary{
			Project:      p,
			UserFullName: userNames[p.UserID],
			UnreadCount:  unread,
			LastActivity: last,
		})
	}

	sortSummaries(summaries)
	return summaries, nil
}

func opposite(r role.Role) role.Role {
	if r == role.Admin {
		return role.Employee
	}
	return role.Admin
}
