package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sasanhatam/Damonservice/internal/app/ds"
	"github.com/sasanhatam/Damonservice/internal/app/role"
)

func newTestRepo(t *testing.T) *FileRepository {
	t.Helper()
	repo, err := NewFile(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *FileRepository, login string, r role.Role, active bool) *ds.User {
	t.Helper()
	u := &ds.User{Login: login, Password: "hash", FullName: login, Role: r, IsActive: active}
	require.NoError(t, repo.SaveUser(u))
	return u
}

func seedDevice(t *testing.T, repo *FileRepository, model string, categoryID uint, active bool) *ds.Device {
	t.Helper()
	d := &ds.Device{ModelName: model, CategoryID: categoryID, IsActive: active, FactoryPrice: 1000, Length: 1, Weight: 10}
	require.NoError(t, repo.SaveDevice(d))
	return d
}

func TestFileRepository_GetUserByLogin_CaseInsensitive(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "Admin", role.Admin, true)

	u, err := repo.GetUserByLogin("admin")
	require.NoError(t, err)
	assert.Equal(t, "Admin", u.Login)

	u, err = repo.GetUserByLogin("ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "Admin", u.Login)

	_, err = repo.GetUserByLogin("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileRepository_DeleteUser_LastAdminGuard(t *testing.T) {
	repo := newTestRepo(t)
	admin := seedUser(t, repo, "admin", role.Admin, true)
	seedUser(t, repo, "ali", role.Employee, true)

	// единственный активный администратор защищен
	err := repo.DeleteUser(admin.ID)
	assert.ErrorIs(t, err, ErrLastAdmin)

	// неактивный администратор не считается заменой
	seedUser(t, repo, "old-admin", role.Admin, false)
	err = repo.DeleteUser(admin.ID)
	assert.ErrorIs(t, err, ErrLastAdmin)

	// при втором активном администраторе удаление проходит
	seedUser(t, repo, "admin2", role.Admin, true)
	require.NoError(t, repo.DeleteUser(admin.ID))
	_, err = repo.GetUserByID(admin.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// сотрудника можно удалять всегда
	employee, err := repo.GetUserByLogin("ali")
	require.NoError(t, err)
	require.NoError(t, repo.DeleteUser(employee.ID))
}

func TestFileRepository_SaveUser_LastAdminGuard(t *testing.T) {
	repo := newTestRepo(t)
	admin := seedUser(t, repo, "admin", role.Admin, true)
	seedUser(t, repo, "ali", role.Employee, true)

	// понижение роли единственного активного администратора
	demoted := *admin
	demoted.Role = role.Employee
	assert.ErrorIs(t, repo.SaveUser(&demoted), ErrLastAdmin)

	// деактивация единственного активного администратора
	deactivated := *admin
	deactivated.IsActive = false
	assert.ErrorIs(t, repo.SaveUser(&deactivated), ErrLastAdmin)

	// отказ не оставляет частичных изменений
	got, err := repo.GetUserByID(admin.ID)
	require.NoError(t, err)
	assert.Equal(t, role.Admin, got.Role)
	assert.True(t, got.IsActive)

	// обновление без снятия админства проходит
	renamed := *admin
	renamed.FullName = "Root"
	require.NoError(t, repo.SaveUser(&renamed))

	// при втором активном администраторе понижение проходит
	seedUser(t, repo, "admin2", role.Admin, true)
	require.NoError(t, repo.SaveUser(&demoted))
}

func TestFileRepository_SaveUser_LoginUnique(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "Ali", role.Employee, true)
	sara := seedUser(t, repo, "sara", role.Employee, true)

	// создание с занятым логином, сверка без учета регистра
	dup := &ds.User{Login: "ali", Password: "hash", Role: role.Employee, IsActive: true}
	assert.ErrorIs(t, repo.SaveUser(dup), ErrLoginTaken)

	users, err := repo.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, 2)

	// обновление с прежним логином проходит
	sara.FullName = "Sara R."
	require.NoError(t, repo.SaveUser(sara))

	// захват чужого логина отклоняется
	sara.Login = "ALI"
	assert.ErrorIs(t, repo.SaveUser(sara), ErrLoginTaken)
}

func TestFileRepository_FailedFlushKeepsState(t *testing.T) {
	repo := newTestRepo(t)
	user := seedUser(t, repo, "ali", role.Employee, true)

	// закрытый файл ломает запись на диск: мутация должна откатиться
	require.NoError(t, repo.file.Close())

	changed := *user
	changed.FullName = "Other"
	require.Error(t, repo.SaveUser(&changed))

	got, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ali", got.FullName)
}

func TestFileRepository_SearchActiveDevices(t *testing.T) {
	repo := newTestRepo(t)
	vrf := &ds.Category{Name: "VRF Systems", IsActive: true}
	require.NoError(t, repo.SaveCategory(vrf))
	chillers := &ds.Category{Name: "Chillers", IsActive: true}
	require.NoError(t, repo.SaveCategory(chillers))

	seedDevice(t, repo, "VRF-Outdoor-20HP", vrf.ID, true)
	seedDevice(t, repo, "VRF-Indoor-Cassette", vrf.ID, true)
	seedDevice(t, repo, "Screw-Chiller-100T", chillers.ID, true)
	seedDevice(t, repo, "VRF-Legacy", vrf.ID, false)

	// без фильтров: только активные
	all, err := repo.SearchActiveDevices("", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// подстрока без учета регистра
	found, err := repo.SearchActiveDevices("outdoor", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "VRF-Outdoor-20HP", found[0].ModelName)
	assert.Equal(t, "VRF Systems", found[0].CategoryName)

	// фильтр по категории
	byCategory, err := repo.SearchActiveDevices("", chillers.ID)
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Screw-Chiller-100T", byCategory[0].ModelName)

	// комбинация фильтров без совпадений
	none, err := repo.SearchActiveDevices("chiller", vrf.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFileRepository_SearchActiveDevices_DanglingCategory(t *testing.T) {
	repo := newTestRepo(t)
	cat := &ds.Category{Name: "Chillers", IsActive: true}
	require.NoError(t, repo.SaveCategory(cat))
	seedDevice(t, repo, "Screw-Chiller-100T", cat.ID, true)

	// удаление категории оставляет устройство с заглушкой вместо имени
	require.NoError(t, repo.DeleteCategory(cat.ID))

	found, err := repo.SearchActiveDevices("", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Unknown", found[0].CategoryName)
}

func TestFileRepository_CreateInquiry_Dedup(t *testing.T) {
	repo := newTestRepo(t)
	user := seedUser(t, repo, "ali", role.Employee, true)
	device := seedDevice(t, repo, "VRF-Outdoor-20HP", 1, true)
	project, err := repo.CreateProject(user.ID, "Hotel Espinas")
	require.NoError(t, err)

	first, err := repo.CreateInquiry(&ds.Inquiry{
		UserID: user.ID, DeviceID: device.ID, ProjectID: project.ID, SellPrice: 16056,
	})
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	// повторный запрос той же тройки возвращает существующий pending
	second, err := repo.CreateInquiry(&ds.Inquiry{
		UserID: user.ID, DeviceID: device.ID, ProjectID: project.ID, SellPrice: 16056,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	list, err := repo.ListUserInquiries(user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// после решения администратора тройка свободна для нового запроса
	require.NoError(t, repo.SetInquiryStatus(first.ID, ds.StatusApproved))
	third, err := repo.CreateInquiry(&ds.Inquiry{
		UserID: user.ID, DeviceID: device.ID, ProjectID: project.ID, SellPrice: 16056,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)

	// другой проект не попадает под дедупликацию
	other, err := repo.CreateProject(user.ID, "Mall Project")
	require.NoError(t, err)
	fourth, err := repo.CreateInquiry(&ds.Inquiry{
		UserID: user.ID, DeviceID: device.ID, ProjectID: other.ID, SellPrice: 16056,
	})
	require.NoError(t, err)
	assert.NotEqual(t, third.ID, fourth.ID)
}

func TestFileRepository_SetInquiryStatus_Monotonic(t *testing.T) {
	repo := newTestRepo(t)
	user := seedUser(t, repo, "ali", role.Employee, true)
	project, err := repo.CreateProject(user.ID, "Hotel Espinas")
	require.NoError(t, err)
	inq, err := repo.CreateInquiry(&ds.Inquiry{UserID: user.ID, DeviceID: 1, ProjectID: project.ID})
	require.NoError(t, err)
	assert.Equal(t, ds.StatusPending, inq.Status)
	assert.Nil(t, inq.RespondedAt)

	require.NoError(t, repo.SetInquiryStatus(inq.ID, ds.StatusApproved))
	list, err := repo.ListUserInquiries(user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ds.StatusApproved, list[0].Status)
	require.NotNil(t, list[0].RespondedAt)
	firstDecision := *list[0].RespondedAt

	// уже решенный запрос не меняется
	require.NoError(t, repo.SetInquiryStatus(inq.ID, ds.StatusRejected))
	list, err = repo.ListUserInquiries(user.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.StatusApproved, list[0].Status)
	assert.Equal(t, firstDecision, *list[0].RespondedAt)

	// несуществующий ID: no-op без ошибки
	require.NoError(t, repo.SetInquiryStatus(9999, ds.StatusRejected))
}

func TestFileRepository_UnreadFlow(t *testing.T) {
	repo := newTestRepo(t)
	employee := seedUser(t, repo, "ali", role.Employee, true)
	project, err := repo.CreateProject(employee.ID, "Hotel Espinas")
	require.NoError(t, err)

	require.NoError(t, repo.AddComment(&ds.Comment{
		ProjectID: project.ID, UserID: employee.ID, Role: role.Employee, Content: "когда будет цена?",
	}))
	require.NoError(t, repo.AddComment(&ds.Comment{
		ProjectID: project.ID, UserID: 99, Role: role.Admin, Content: "проверяю",
	}))

	// администратор видит непрочитанное сообщение сотрудника и наоборот
	forAdmin, err := repo.CountUnread(project.ID, role.Admin)
	require.NoError(t, err)
	assert.Equal(t, 1, forAdmin)
	forEmployee, err := repo.CountUnread(project.ID, role.Employee)
	require.NoError(t, err)
	assert.Equal(t, 1, forEmployee)

	// бейдж сотрудника: сообщения администраторов по его проектам
	badge, err := repo.CountUnreadForUser(employee.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, badge)

	// администратор прочитал чат: помечаются только сообщения сотрудника
	require.NoError(t, repo.MarkCommentsRead(project.ID, role.Admin))
	forAdmin, err = repo.CountUnread(project.ID, role.Admin)
	require.NoError(t, err)
	assert.Equal(t, 0, forAdmin)
	forEmployee, err = repo.CountUnread(project.ID, role.Employee)
	require.NoError(t, err)
	assert.Equal(t, 1, forEmployee)

	require.NoError(t, repo.MarkCommentsRead(project.ID, role.Employee))
	badge, err = repo.CountUnreadForUser(employee.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, badge)
}

func TestFileRepository_ProjectSummaries(t *testing.T) {
	repo := newTestRepo(t)
	ali := seedUser(t, repo, "ali", role.Employee, true)
	sara := seedUser(t, repo, "sara", role.Employee, true)

	p1, err := repo.CreateProject(ali.ID, "Hotel Espinas")
	require.NoError(t, err)
	p2, err := repo.CreateProject(sara.ID, "Mall Project")
	require.NoError(t, err)

	// сообщение сотрудника двигает активность p1 и дает непрочитанное
	require.NoError(t, repo.AddComment(&ds.Comment{
		ProjectID: p1.ID, UserID: ali.ID, Role: role.Employee, Content: "цена?",
	}))

	summaries, err := repo.ProjectSummaries()
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// сортировка по последней активности, новее первым
	assert.Equal(t, p1.ID, summaries[0].Project.ID)
	assert.Equal(t, "ali", summaries[0].UserFullName)
	assert.Equal(t, 1, summaries[0].UnreadCount)
	assert.Equal(t, p2.ID, summaries[1].Project.ID)
	assert.Equal(t, 0, summaries[1].UnreadCount)
	assert.False(t, summaries[0].LastActivity.Before(summaries[1].LastActivity))
}

func TestFileRepository_ReplaceSettings_SingleActive(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetSettings()
	assert.ErrorIs(t, err, ErrNotFound)

	first := &ds.Settings{
		DiscountMultiplier: 0.38, FreightRate: 1000,
		CustomsNumerator: 350000, CustomsDenominator: 150000,
		WarrantyRate: 0.05, CommissionFactor: 0.95, OfficeFactor: 0.95, ProfitFactor: 0.65,
	}
	require.NoError(t, repo.ReplaceSettings(first))

	got, err := repo.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, 0.38, got.DiscountMultiplier)

	// замена целиком сохраняет единственную активную запись
	second := &ds.Settings{
		DiscountMultiplier: 0.40, FreightRate: 1200,
		CustomsNumerator: 400000, CustomsDenominator: 160000,
		WarrantyRate: 0.06, CommissionFactor: 0.9, OfficeFactor: 0.9, ProfitFactor: 0.7,
	}
	require.NoError(t, repo.ReplaceSettings(second))

	got, err = repo.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, 0.40, got.DiscountMultiplier)
	assert.Equal(t, first.ID, got.ID)
}

func TestFileRepository_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	repo, err := NewFile(path)
	require.NoError(t, err)
	user := &ds.User{Login: "ali", Password: "hash", FullName: "Ali", Role: role.Employee, IsActive: true}
	require.NoError(t, repo.SaveUser(user))
	project, err := repo.CreateProject(user.ID, "Hotel Espinas")
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	reopened, err := NewFile(path)
	require.NoError(t, err)
	defer reopened.Close()

	u, err := reopened.GetUserByLogin("ali")
	require.NoError(t, err)
	assert.Equal(t, user.ID, u.ID)

	p, err := reopened.GetProjectByID(project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hotel Espinas", p.Name)

	// счетчики идентификаторов не сбрасываются после перезапуска
	another, err := reopened.CreateProject(u.ID, "Mall Project")
	require.NoError(t, err)
	assert.Greater(t, another.ID, project.ID)
}

func TestEnsureSeedData(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, EnsureSeedData(repo))

	users, err := repo.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, 3)

	admin, err := repo.GetUserByLogin("admin")
	require.NoError(t, err)
	assert.Equal(t, role.Admin, admin.Role)
	assert.NotEqual(t, "admin", admin.Password) // хеш, не пароль

	devices, err := repo.ListDevices()
	require.NoError(t, err)
	assert.Len(t, devices, 6)

	settings, err := repo.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, 0.65, settings.ProfitFactor)

	// повторный вызов не дублирует данные
	require.NoError(t, EnsureSeedData(repo))
	users, err = repo.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, 3)
}
