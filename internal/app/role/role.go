package role

// Роли пользователей системы
type Role int

const (
	Employee Role = iota // сотрудник: поиск по каталогу и запросы цен
	Admin                // администратор: полный доступ
)

func (r Role) String() string {
	switch r {
	case Admin:
		return "admin"
	default:
		return "employee"
	}
}

// FromString преобразует строковое представление роли
func FromString(s string) Role {
	if s == "admin" {
		return Admin
	}
	return Employee
}
