package repository

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sasanhatam/Damonservice/internal/app/ds"
	"github.com/sasanhatam/Damonservice/internal/app/role"
)

// Содержимое файла-хранилища: коллекции по именам сущностей,
// JSON-массивы одним снимком
type snapshot struct {
	Users      []ds.User     `json:"users"`
	Categories []ds.Category `json:"categories"`
	Devices    []ds.Device   `json:"devices"`
	Settings   []ds.Settings `json:"settings"`
	Projects   []ds.Project  `json:"projects"`
	Inquiries  []ds.Inquiry  `json:"inquiries"`
	Comments   []ds.Comment  `json:"comments"`
	Seq        map[string]uint `json:"seq"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Реализация Repository поверх локального JSON-файла.
// Все записи сериализуются через один мьютекс, поэтому дедупликация
// pending-запросов здесь атомарна без дополнительных индексов
type FileRepository struct {
	mu   sync.RWMutex
	file *os.File
	snap *snapshot
}

func NewFile(path string) (*FileRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}
	r := &FileRepository{file: f}
	if err := r.load(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

func (r *FileRepository) Close() error { return r.file.Close() }

func (r *FileRepository) load() error {
	info, err := r.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		r.snap = &snapshot{Seq: map[string]uint{}, UpdatedAt: time.Now()}
		return r.flushLocked()
	}
	dec := json.NewDecoder(r.file)
	var snap snapshot
	if err := dec.Decode(&snap); err != nil {
		return err
	}
	if snap.Seq == nil {
		snap.Seq = map[string]uint{}
	}
	r.snap = &snap
	return nil
}

func (r *FileRepository) flushLocked() error {
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	enc := json.NewEncoder(r.file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.snap); err != nil {
		return err
	}
	// усечение на случай, если новый снимок короче
	pos, _ := r.file.Seek(0, io.SeekCurrent)
	if err := r.file.Truncate(pos); err != nil {
		return err
	}
	return r.file.Sync()
}

func (r *FileRepository) withWrite(fn func(*snapshot) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Откат к копии, если мутация или запись на диск не удались:
	// память и файл не должны расходиться
	backup, err := cloneSnapshot(r.snap)
	if err != nil {
		return err
	}
	if err := fn(r.snap); err != nil {
		r.snap = backup
		return err
	}
	r.snap.UpdatedAt = time.Now()
	if err := r.flushLocked(); err != nil {
		r.snap = backup
		return err
	}
	return nil
}

func cloneSnapshot(s *snapshot) (*snapshot, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out snapshot
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out.Seq == nil {
		out.Seq = map[string]uint{}
	}
	return &out, nil
}

func (r *FileRepository) withRead(fn func(*snapshot)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(r.snap)
}

func (s *snapshot) nextID(collection string) uint {
	s.Seq[collection]++
	return s.Seq[collection]
}

// Пользователи

func (r *FileRepository) GetUserByID(id uint) (*ds.User, error) {
	var out *ds.User
	r.withRead(func(s *snapshot) {
		for i := range s.Users {
			if s.Users[i].ID == id {
				u := s.Users[i]
				out = &u
				return
			}
		}
	})
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}

func (r *FileRepository) GetUserByLogin(login string) (*ds.User, error) {
	var out *ds.User
	r.withRead(func(s *snapshot) {
		for i := range s.Users {
			if strings.EqualFold(s.Users[i].Login, login) {
				u := s.Users[i]
				out = &u
				return
			}
		}
	})
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}

func (r *FileRepository) ListUsers() ([]ds.User, error) {
	var out []ds.User
	r.withRead(func(s *snapshot) {
		out = append(out, s.Users...)
	})
	return out, nil
}

func (r *FileRepository) SaveUser(u *ds.User) error {
	return r.withWrite(func(s *snapshot) error {
		for i := range s.Users {
			if s.Users[i].ID != u.ID && strings.EqualFold(s.Users[i].Login, u.Login) {
				return ErrLoginTaken
			}
		}
		if u.ID == 0 {
			u.ID = s.nextID("users")
			s.Users = append(s.Users, *u)
			return nil
		}
		for i := range s.Users {
			if s.Users[i].ID != u.ID {
				continue
			}
			// понижение или деактивация последнего активного администратора
			// запрещены так же, как удаление
			prev := s.Users[i]
			if prev.Role == role.Admin && prev.IsActive &&
				(u.Role != role.Admin || !u.IsActive) {
				remaining := 0
				for j := range s.Users {
					if s.Users[j].ID != u.ID && s.Users[j].Role == role.Admin && s.Users[j].IsActive {
						remaining++
					}
				}
				if remaining == 0 {
					return ErrLastAdmin
				}
			}
			s.Users[i] = *u
			return nil
		}
		s.Users = append(s.Users, *u)
		return nil
	})
}

func (r *FileRepository) DeleteUser(id uint) error {
	return r.withWrite(func(s *snapshot) error {
		idx := -1
		for i := range s.Users {
			if s.Users[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrNotFound
		}

		if s.Users[idx].Role == role.Admin {
			remaining := 0
			for i := range s.Users {
				if s.Users[i].ID != id && s.Users[i].Role == role.Admin && s.Users[i].IsActive {
					remaining++
				}
			}
			if remaining == 0 {
				return ErrLastAdmin
			}
		}

		s.Users = append(s.Users[:idx], s.Users[idx+1:]...)
		return nil
	})
}

// Категории

func (r *FileRepository) ListCategories() ([]ds.Category, error) {
	var out []ds.Category
	r.withRead(func(s *snapshot) {
		out = append(out, s.Categories...)
	})
	return out, nil
}

func (r *FileRepository) ListActiveCategories() ([]ds.Category, error) {
	var out []ds.Category
	r.withRead(func(s *snapshot) {
		for _, c := range s.Categories {
			if c.IsActive {
				out = append(out, c)
			}
		}
	})
	return out, nil
}

func (r *FileRepository) SaveCategory(c *ds.Category) error {
	return r.withWrite(func(s *snapshot) error {
		if c.ID == 0 {
			c.ID = s.nextID("categories")
			s.Categories = append(s.Categories, *c)
			return nil
		}
		for i := range s.Categories {
			if s.Categories[i].ID == c.ID {
				s.Categories[i] = *c
				return nil
			}
		}
		s.Categories = append(s.Categories, *c)
		return nil
	})
}

func (r *FileRepository) DeleteCategory(id uint) error {
	return r.withWrite(func(s *snapshot) error {
		for i := range s.Categories {
			if s.Categories[i].ID == id {
				s.Categories = append(s.Categories[:i], s.Categories[i+1:]...)
				return nil
			}
		}
		return nil
	})
}

// Устройства

func (r *FileRepository) ListDevices() ([]ds.Device, error) {
	var out []ds.Device
	r.withRead(func(s *snapshot) {
		out = append(out, s.Devices...)
	})
	return out, nil
}

func (r *FileRepository) GetDeviceByID(id uint) (*ds.Device, error) {
	var out *ds.Device
	r.withRead(func(s *snapshot) {
		for i := range s.Devices {
			if s.Devices[i].ID == id {
				d := s.Devices[i]
				out = &d
				return
			}
		}
	})
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}

func (r *FileRepository) SearchActiveDevices(query string, categoryID uint) ([]SafeDevice, error) {
	out := []SafeDevice{}
	r.withRead(func(s *snapshot) {
		categoryNames := make(map[uint]string, len(s.Categories))
		for _, c := range s.Categories {
			categoryNames[c.ID] = c.Name
		}

		q := strings.ToLower(query)
		for _, d := range s.Devices {
			if !d.IsActive {
				continue
			}
			if categoryID != 0 && d.CategoryID != categoryID {
				continue
			}
			if q != "" && !strings.Contains(strings.ToLower(d.ModelName), q) {
				continue
			}
			name, ok := categoryNames[d.CategoryID]
			if !ok {
				name = "Unknown"
			}
			imageURL := ""
			if d.ImageURL != nil {
				imageURL = *d.ImageURL
			}
			out = append(out, SafeDevice{
				ID:           d.ID,
				ModelName:    d.ModelName,
				CategoryID:   d.CategoryID,
				CategoryName: name,
				ImageURL:     imageURL,
			})
		}
	})
	return out, nil
}

func (r *FileRepository) SaveDevice(d *ds.Device) error {
	return r.withWrite(func(s *snapshot) error {
		if d.ID == 0 {
			d.ID = s.nextID("devices")
			s.Devices = append(s.Devices, *d)
			return nil
		}
		for i := range s.Devices {
			if s.Devices[i].ID == d.ID {
				s.Devices[i] = *d
				return nil
			}
		}
		s.Devices = append(s.Devices, *d)
		return nil
	})
}

func (r *FileRepository) DeleteDevice(id uint) error {
	return r.withWrite(func(s *snapshot) error {
		for i := range s.Devices {
			if s.Devices[i].ID == id {
				s.Devices = append(s.Devices[:i], s.Devices[i+1:]...)
				return nil
			}
		}
		return nil
	})
}

func (r *FileRepository) UpdateDeviceImage(id uint, imageURL string) error {
	return r.withWrite(func(s *snapshot) error {
		for i := range s.Devices {
			if s.Devices[i].ID == id {
				s.Devices[i].ImageURL = &imageURL
				return nil
			}
		}
		return ErrNotFound
	})
}

// Коэффициенты

func (r *FileRepository) GetSettings() (*ds.Settings, error) {
	var out *ds.Settings
	r.withRead(func(s *snapshot) {
		for i := range s.Settings {
			if s.Settings[i].IsActive {
				st := s.Settings[i]
				out = &st
				return
			}
		}
	})
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}

func (r *FileRepository) ReplaceSettings(settings *ds.Settings) error {
	return r.withWrite(func(s *snapshot) error {
		settings.IsActive = true
		for i := range s.Settings {
			if s.Settings[i].IsActive {
				settings.ID = s.Settings[i].ID
				s.Settings[i] = *settings
				return nil
			}
		}
		settings.ID = s.nextID("settings")
		s.Settings = append(s.Settings, *settings)
		return nil
	})
}

// Проекты

func (r *FileRepository) CreateProject(userID uint, name string) (*ds.Project, error) {
	project := ds.Project{
		Name:      name,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	err := r.withWrite(func(s *snapshot) error {
		project.ID = s.nextID("projects")
		s.Projects = append(s.Projects, project)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *FileRepository) GetProjectByID(id uint) (*ds.Project, error) {
	var out *ds.Project
	r.withRead(func(s *snapshot) {
		for i := range s.Projects {
			if s.Projects[i].ID == id {
				p := s.Projects[i]
				out = &p
				return
			}
		}
	})
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}

func (r *FileRepository) ListUserProjects(userID uint) ([]ds.Project, error) {
	out := []ds.Project{}
	r.withRead(func(s *snapshot) {
		for _, p := range s.Projects {
			if p.UserID == userID {
				out = append(out, p)
			}
		}
	})
	// новые проекты первыми
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *FileRepository) ProjectSummaries() ([]ProjectSummary, error) {
	summaries := []ProjectSummary{}
	r.withRead(func(s *snapshot) {
		userNames := make(map[uint]string, len(s.Users))
		for _, u := range s.Users {
			userNames[u.ID] = u.FullName
		}

		for _, p := range s.Projects {
			unread := 0
			last := p.CreatedAt
			for _, c := range s.Comments {
				if c.ProjectID != p.ID {
					continue
				}
				if c.Role == role.Employee && !c.IsRead {
					unread++
				}
				if c.CreatedAt.After(last) {
					last = c.CreatedAt
				}
			}
			for _, inq := range s.Inquiries {
				if inq.ProjectID == p.ID && inq.CreatedAt.After(last) {
					last = inq.CreatedAt
				}
			}
			summaries = append(summaries, ProjectSummary{
				Project:      p,
				UserFullName: userNames[p.UserID],
				UnreadCount:  unread,
				LastActivity: last,
			})
		}
	})
	sortSummaries(summaries)
	return summaries, nil
}

// Запросы цен

func (r *FileRepository) CreateInquiry(inq *ds.Inquiry) (*ds.Inquiry, error) {
	var result *ds.Inquiry
	err := r.withWrite(func(s *snapshot) error {
		// проверка и вставка под одним мьютексом: гонка двойного запроса исключена
		for i := range s.Inquiries {
			ex := &s.Inquiries[i]
			if ex.UserID == inq.UserID && ex.DeviceID == inq.DeviceID &&
				ex.ProjectID == inq.ProjectID && ex.Status == ds.StatusPending {
				found := *ex
				result = &found
				return nil
			}
		}
		inq.ID = s.nextID("inquiries")
		inq.Status = ds.StatusPending
		inq.CreatedAt = time.Now()
		s.Inquiries = append(s.Inquiries, *inq)
		result = inq
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *FileRepository) ListUserInquiries(userID uint) ([]ds.Inquiry, error) {
	out := []ds.Inquiry{}
	r.withRead(func(s *snapshot) {
		for _, inq := range s.Inquiries {
			if inq.UserID == userID {
				out = append(out, inq)
			}
		}
	})
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *FileRepository) ListInquiries() ([]ds.Inquiry, error) {
	out := []ds.Inquiry{}
	r.withRead(func(s *snapshot) {
		out = append(out, s.Inquiries...)
	})
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *FileRepository) SetInquiryStatus(id uint, status string) error {
	return r.withWrite(func(s *snapshot) error {
		for i := range s.Inquiries {
			if s.Inquiries[i].ID == id && s.Inquiries[i].Status == ds.StatusPending {
				now := time.Now()
				s.Inquiries[i].Status = status
				s.Inquiries[i].RespondedAt = &now
				return nil
			}
		}
		return nil // нет записи или уже решена: no-op
	})
}

// Чат проектов

func (r *FileRepository) AddComment(c *ds.Comment) error {
	return r.withWrite(func(s *snapshot) error {
		c.ID = s.nextID("comments")
		c.CreatedAt = time.Now()
		c.IsRead = false
		s.Comments = append(s.Comments, *c)
		return nil
	})
}

func (r *FileRepository) ListProjectComments(projectID uint) ([]ds.Comment, error) {
	out := []ds.Comment{}
	r.withRead(func(s *snapshot) {
		for _, c := range s.Comments {
			if c.ProjectID == projectID {
				out = append(out, c)
			}
		}
	})
	return out, nil
}

func (r *FileRepository) MarkCommentsRead(projectID uint, reader role.Role) error {
	target := opposite(reader)
	return r.withWrite(func(s *snapshot) error {
		for i := range s.Comments {
			if s.Comments[i].ProjectID == projectID && s.Comments[i].Role == target {
				s.Comments[i].IsRead = true
			}
		}
		return nil
	})
}

func (r *FileRepository) CountUnread(projectID uint, audience role.Role) (int, error) {
	target := opposite(audience)
	count := 0
	r.withRead(func(s *snapshot) {
		for _, c := range s.Comments {
			if c.ProjectID == projectID && c.Role == target && !c.IsRead {
				count++
			}
		}
	})
	return count, nil
}

func (r *FileRepository) CountUnreadForUser(userID uint) (int, error) {
	count := 0
	r.withRead(func(s *snapshot) {
		userProjects := make(map[uint]bool)
		for _, p := range s.Projects {
			if p.UserID == userID {
				userProjects[p.ID] = true
			}
		}
		for _, c := range s.Comments {
			if userProjects[c.ProjectID] && c.Role == role.Admin && !c.IsRead {
				count++
			}
		}
	})
	return count, nil
}
