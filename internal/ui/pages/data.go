package pages

import (
	"html/template"

	"github.com/a-h/templ"
)

// Option — элемент выпадающего списка или флажок.
type Option struct {
	Value    string
	Label    string
	LabelKey string
	Selected bool
}

// Pager — постраничная навигация.
type Pager struct {
	Page       int
	TotalPages int
	PrevHref   string
	NextHref   string
}

// RowActions — ссылки действий строки таблицы.
type RowActions struct {
	EditHref     string
	DeleteAction string
}

// --- Публичные страницы ---

// ArticleCard — карточка публикации в списке.
type ArticleCard struct {
	Href         string
	Title        string
	Lead         string
	PublishedAt  string
	CategoryName string
}

type HomeData struct {
	Articles []ArticleCard
}

func Home(v View, d *HomeData) templ.Component {
	v.Data = d
	return component(pageHome, v)
}

func Collegium(v View) templ.Component { return component(pageCollegium, v) }

func Center(v View) templ.Component { return component(pageCenter, v) }

// LawyerRow — строка реестра адвокатов.
type LawyerRow struct {
	Name   string
	Branch string
	Office string
}

type LawyersData struct {
	Rows     []LawyerRow
	Total    int
	Query    string
	Branches []Option
	Offices  []Option
	Pager    Pager
	// Unavailable — реестр не загружен (внешний API недоступен).
	Unavailable bool
}

func Lawyers(v View, d *LawyersData) templ.Component {
	v.Data = d
	return component(pageLawyers, v)
}

type ArticlesData struct {
	Articles    []ArticleCard
	Categories  []Option
	Unavailable bool
}

func Articles(v View, d *ArticlesData) templ.Component {
	v.Data = d
	return component(pageArticles, v)
}

type ArticleData struct {
	Heading      string
	Lead         string
	PublishedAt  string
	CategoryName string
	// Body — HTML статьи из редактора администратора.
	Body template.HTML
}

func Article(v View, d *ArticleData) templ.Component {
	v.Data = d
	return component(pageArticle, v)
}

// ContactRow — филиал на странице контактов.
type ContactRow struct {
	Name        string
	Address     string
	Phone       string
	Email       string
	Latitude    string
	Longitude   string
	HasLocation bool
}

type ContactsData struct {
	Offices []ContactRow
	Name    string
	Email   string
	Message string
}

func Contacts(v View, d *ContactsData) templ.Component {
	v.Data = d
	return component(pageContacts, v)
}

type LoginData struct {
	Email string
}

func Login(v View, d *LoginData) templ.Component {
	v.Data = d
	return component(pageLogin, v)
}

type ErrorData struct {
	MessageKey string
}

func Error(v View, d *ErrorData) templ.Component {
	v.Data = d
	return component(pageError, v)
}

// --- Кабинет ---

type DashboardData struct {
	ID       string
	Email    string
	Name     string
	Phone    string
	Verified bool
	Roles    []string // ключи каталога
}

func Dashboard(v View, d *DashboardData) templ.Component {
	v.Data = d
	return component(pageDashboard, v)
}

// UserFormData — форма пользователя (свой профиль или карточка администратора).
type UserFormData struct {
	Action          string
	FirstName       string
	LastName        string
	MiddleName      string
	Email           string
	IIN             string
	Phone           string
	LicenseNumber   string
	LicenseIssuedAt string
	JoinedAt        string
	Address         string
	Branches        []Option
	Offices         []Option
	// Roles — флажки ролей; пустой для своего профиля.
	Roles    []Option
	IsLawyer bool
	IsNew    bool
}

func Profile(v View, d *UserFormData) templ.Component {
	v.Data = d
	return component(pageProfile, v)
}

func UserForm(v View, d *UserFormData) templ.Component {
	v.Data = d
	return component(pageUserForm, v)
}

type UserRow struct {
	RowActions
	Name  string
	Email string
	Roles []string // ключи каталога
}

type UsersData struct {
	Rows    []UserRow
	Total   int
	Query   string
	Roles   []Option
	Pager   Pager
	NewHref string
}

func Users(v View, d *UsersData) templ.Component {
	v.Data = d
	return component(pageUsers, v)
}

type OrganizationRow struct {
	RowActions
	Name    string
	Address string
	Phone   string
	Email   string
}

type OrganizationsData struct {
	Rows    []OrganizationRow
	Total   int
	Query   string
	Pager   Pager
	NewHref string
}

func Organizations(v View, d *OrganizationsData) templ.Component {
	v.Data = d
	return component(pageOrganizations, v)
}

type OrganizationFormData struct {
	Action       string
	Names        map[string]string
	Addresses    map[string]string
	Descriptions map[string]string
	Phone        string
	Email        string
	Latitude     string
	Longitude    string
	IsNew        bool
}

func OrganizationForm(v View, d *OrganizationFormData) templ.Component {
	v.Data = d
	return component(pageOrganizationForm, v)
}

type CabinetArticleRow struct {
	RowActions
	Title       string
	Slug        string
	StatusKey   string
	PublishedAt string
}

type CabinetArticlesData struct {
	Rows    []CabinetArticleRow
	NewHref string
}

func CabinetArticles(v View, d *CabinetArticlesData) templ.Component {
	v.Data = d
	return component(pageCabinetArticles, v)
}

// ArticleTranslationFields — поля статьи на одном языке.
type ArticleTranslationFields struct {
	Lang            string
	Title           string
	Lead            string
	Body            string
	MetaTitle       string
	MetaDescription string
}

type ArticleFormData struct {
	Action       string
	Slug         string
	PublishedAt  string
	Statuses     []Option
	Categories   []Option
	Translations []ArticleTranslationFields
	IsNew        bool
}

func ArticleForm(v View, d *ArticleFormData) templ.Component {
	v.Data = d
	return component(pageArticleForm, v)
}

type CategoryRow struct {
	RowActions
	Key      string
	Name     string
	Position int
}

type CategoriesData struct {
	Rows    []CategoryRow
	NewHref string
}

func Categories(v View, d *CategoriesData) templ.Component {
	v.Data = d
	return component(pageCategories, v)
}

type CategoryFormData struct {
	Action   string
	Key      string
	Position string
	Names    map[string]string
	IsNew    bool
}

func CategoryForm(v View, d *CategoryFormData) templ.Component {
	v.Data = d
	return component(pageCategoryForm, v)
}

// RoleCount — число участников с ролью.
type RoleCount struct {
	RoleKey string
	Count   int
}

type ReportsData struct {
	Total  int
	ByRole []RoleCount
	// Unavailable — часть счётчиков не загружена.
	Unavailable bool
}

func Reports(v View, d *ReportsData) templ.Component {
	v.Data = d
	return component(pageReports, v)
}
