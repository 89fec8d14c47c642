package repository

import (
	"errors"
	"time"

	"github.com/sasanhatam/Damonservice/internal/app/ds"
	"github.com/sasanhatam/Damonservice/internal/app/role"
)

var (
	// Запись по идентификатору не найдена
	ErrNotFound = errors.New("запись не найдена")
	// Мутация, после которой не остается ни одного активного администратора:
	// удаление, понижение роли или деактивация последнего
	ErrLastAdmin = errors.New("нельзя лишить систему последнего администратора")
	// Логин уже занят другой учетной записью (без учета регистра)
	ErrLoginTaken = errors.New("логин уже занят")
)

// Редуцированное представление устройства для сотрудников:
// закупочная цена, длина и вес сюда не попадают
type SafeDevice struct {
	ID           uint   `json:"id"`
	ModelName    string `json:"model_name"`
	CategoryID   uint   `json:"category_id"`
	CategoryName string `json:"category_name"`
	ImageURL     string `json:"image_url"`
}

// Сводка по проекту для панели администратора
type ProjectSummary struct {
	Project      ds.Project `json:"project"`
	UserFullName string     `json:"user_full_name"`
	UnreadCount  int        `json:"unread_count"`  // непрочитанные сообщения сотрудника
	LastActivity time.Time  `json:"last_activity"` // максимум из создания проекта, чата и запросов
}

// Repository — единый контракт хранилища. Две взаимозаменяемые реализации:
// PostgresRepository (gorm) и FileRepository (JSON-файл под мьютексом).
// Обработчики зависят только от этого интерфейса
type Repository interface {
	// Пользователи
	GetUserByID(id uint) (*ds.User, error)
	GetUserByLogin(login string) (*ds.User, error) // без учета регистра
	ListUsers() ([]ds.User, error)
	// SaveUser: id == 0 создает, иначе обновляет целиком. Занятый логин
	// дает ErrLoginTaken; понижение или деактивация последнего активного
	// администратора дает ErrLastAdmin, как и DeleteUser
	SaveUser(u *ds.User) error
	DeleteUser(id uint) error

	// Категории
	ListCategories() ([]ds.Category, error)
	ListActiveCategories() ([]ds.Category, error)
	SaveCategory(c *ds.Category) error
	DeleteCategory(id uint) error // устройства с висячей ссылкой допустимы

	// Устройства
	ListDevices() ([]ds.Device, error)
	GetDeviceByID(id uint) (*ds.Device, error)
	SearchActiveDevices(query string, categoryID uint) ([]SafeDevice, error)
	SaveDevice(d *ds.Device) error
	DeleteDevice(id uint) error
	UpdateDeviceImage(id uint, imageURL string) error

	// Коэффициенты (единственная активная запись, замена целиком)
	GetSettings() (*ds.Settings, error)
	ReplaceSettings(s *ds.Settings) error

	// Проекты
	CreateProject(userID uint, name string) (*ds.Project, error)
	GetProjectByID(id uint) (*ds.Project, error)
	ListUserProjects(userID uint) ([]ds.Project, error)
	ProjectSummaries() ([]ProjectSummary, error)

	// Запросы цен. CreateInquiry идемпотентен: при существующем pending-запросе
	// той же тройки (user, device, project) возвращается он, дубликат не создается
	CreateInquiry(inq *ds.Inquiry) (*ds.Inquiry, error)
	ListUserInquiries(userID uint) ([]ds.Inquiry, error)
	ListInquiries() ([]ds.Inquiry, error)
	// SetInquiryStatus переводит pending-запрос в approved/rejected.
	// Отсутствующий или уже решенный запрос — молчаливый no-op
	SetInquiryStatus(id uint, status string) error

	// Чат проектов
	AddComment(c *ds.Comment) error
	ListProjectComments(projectID uint) ([]ds.Comment, error)
	// MarkCommentsRead помечает прочитанными сообщения противоположной роли
	MarkCommentsRead(projectID uint, reader role.Role) error
	CountUnread(projectID uint, audience role.Role) (int, error)
	CountUnreadForUser(userID uint) (int, error) // бейдж сотрудника по всем его проектам

	Close() error
}
