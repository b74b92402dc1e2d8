// Пакет rbac — ролевой доступ к разделам личного кабинета.
// Роль участника задаётся внешним API; у участника может быть несколько ролей.
// Раздел доступен, если его даёт хотя бы одна роль (логическое ИЛИ).
// Таблица sections — единственный источник правды и для видимости
// пунктов меню, и для проверки на уровне страницы.
package rbac

// Роли участников.
const (
	RoleGuest      = "guest"
	RoleLawyer     = "lawyer"
	RoleAccountant = "accountant"
	RoleAdmin      = "admin"
	RoleBranchHead = "branch_head"
)

// AllRoles — все роли в порядке отображения в формах.
var AllRoles = []string{RoleGuest, RoleLawyer, RoleAccountant, RoleAdmin, RoleBranchHead}

// Section — раздел личного кабинета.
type Section string

// Разделы кабинета.
const (
	SectionProfile    Section = "profile"
	SectionUsers      Section = "users"
	SectionBranches   Section = "branches"
	SectionOffices    Section = "offices"
	SectionArticles   Section = "articles"
	SectionCategories Section = "categories"
	SectionReports    Section = "reports"
)

// sectionRule — строка таблицы доступа.
// roles == nil означает «любой аутентифицированный участник».
type sectionRule struct {
	section Section
	roles   map[string]bool
}

// sections — таблица доступа в порядке отображения меню.
var sections = []sectionRule{
	{SectionProfile, nil},
	{SectionUsers, toSet([]string{RoleAdmin})},
	{SectionBranches, toSet([]string{RoleAdmin, RoleBranchHead})},
	{SectionOffices, toSet([]string{RoleAdmin, RoleLawyer})},
	{SectionArticles, toSet([]string{RoleAdmin})},
	{SectionCategories, toSet([]string{RoleAdmin})},
	{SectionReports, toSet([]string{RoleAdmin, RoleAccountant})},
}

// Sections возвращает все разделы в порядке отображения.
func Sections() []Section {
	result := make([]Section, 0, len(sections))
	for _, s := range sections {
		result = append(result, s.section)
	}
	return result
}

// VisibleSections возвращает разделы, доступные набору ролей, в порядке таблицы.
// Профиль доступен всегда, даже при пустом наборе ролей.
func VisibleSections(roles []string) []Section {
	result := make([]Section, 0, len(sections))
	for _, s := range sections {
		if s.grants(roles) {
			result = append(result, s.section)
		}
	}
	return result
}

// MayRender — проверка на уровне страницы: может ли участник с ролями
// открыть раздел. Неизвестный раздел запрещён.
func MayRender(section Section, roles []string) bool {
	for _, s := range sections {
		if s.section == section {
			return s.grants(roles)
		}
	}
	return false
}

// IsAdmin проверяет наличие роли admin.
func IsAdmin(roles []string) bool {
	return HasRole(roles, RoleAdmin)
}

// HasRole проверяет наличие роли в наборе.
func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsValidRole проверяет, является ли строка допустимой ролью.
func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (s sectionRule) grants(roles []string) bool {
	if s.roles == nil {
		return true
	}
	for _, r := range roles {
		if s.roles[r] {
			return true
		}
	}
	return false
}

// toSet конвертирует срез строк в map для быстрого поиска.
func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
