// Пакет pages — HTML-страницы сайта.
// Каждая страница — templ.Component поверх встроенного html/template:
// общий макет layout.html и файл страницы с блоком "content".
//
// TODO: перенести templates/*.html в .templ-компоненты, когда в сборку
// добавится templ generate; сигнатуры конструкторов страниц сохранить.
package pages

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/nirudef/aoka-web/internal/domain/model"
	"github.com/nirudef/aoka-web/internal/domain/validate"
	"github.com/nirudef/aoka-web/internal/ui/auth"
	"github.com/nirudef/aoka-web/internal/ui/i18n"
	"github.com/nirudef/aoka-web/internal/ui/nav"
)

//go:embed templates/*.html
var templateFS embed.FS

// Имена страниц (файлы templates/<name>.html).
const (
	pageHome             = "home"
	pageCollegium        = "collegium"
	pageCenter           = "center"
	pageLawyers          = "lawyers"
	pageArticles         = "articles"
	pageArticle          = "article"
	pageContacts         = "contacts"
	pageLogin            = "login"
	pageError            = "error"
	pageDashboard        = "dashboard"
	pageProfile          = "profile"
	pageUsers            = "users"
	pageUserForm         = "user_form"
	pageOrganizations    = "organizations"
	pageOrganizationForm = "organization_form"
	pageCabinetArticles  = "cabinet_articles"
	pageArticleForm      = "article_form"
	pageCategories       = "categories"
	pageCategoryForm     = "category_form"
	pageReports          = "reports"
)

var allPages = []string{
	pageHome, pageCollegium, pageCenter, pageLawyers, pageArticles, pageArticle,
	pageContacts, pageLogin, pageError, pageDashboard, pageProfile, pageUsers,
	pageUserForm, pageOrganizations, pageOrganizationForm, pageCabinetArticles,
	pageArticleForm, pageCategories, pageCategoryForm, pageReports,
}

var funcs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"upper": strings.ToUpper,
}

// registry — разобранные шаблоны по имени страницы.
var registry = mustParse()

func mustParse() map[string]*template.Template {
	base := template.Must(template.New("").Funcs(funcs).ParseFS(templateFS,
		"templates/layout.html", "templates/partials.html"))

	result := make(map[string]*template.Template, len(allPages))
	for _, name := range allPages {
		t := template.Must(base.Clone())
		result[name] = template.Must(t.ParseFS(templateFS, "templates/"+name+".html"))
	}
	return result
}

// View — общие данные страницы.
type View struct {
	Lang string
	// Path — путь запроса (для переключателя языка и активного пункта меню).
	Path string
	// TitleKey — ключ заголовка страницы; Title задаёт заголовок готовым текстом.
	TitleKey    string
	Title       string
	Description string

	Member *model.Member
	// Menu заполняется только на страницах кабинета.
	Menu   *nav.Menu
	Crumbs []nav.Crumb
	Flash  *auth.Flash

	// Errors — ошибки полей формы; ErrorKey — общая ошибка формы.
	Errors   validate.Errors
	ErrorKey string

	Data any
}

// T переводит ключ на язык страницы.
func (v View) T(key string) string {
	if b := i18n.GetBundle(); b != nil {
		return b.Translate(v.Lang, key)
	}
	return key
}

// Tf переводит ключ с подстановкой аргументов.
func (v View) Tf(key string, args ...any) string {
	if b := i18n.GetBundle(); b != nil {
		return b.Translatef(v.Lang, key, args...)
	}
	return key
}

// Err возвращает переведённую ошибку поля или пустую строку.
func (v View) Err(field string) string {
	if key := v.Errors.For(field); key != "" {
		return v.T(key)
	}
	return ""
}

// PageTitle — текст для <title>.
func (v View) PageTitle() string {
	site := v.T("site.title")
	switch {
	case v.Title != "":
		return v.Title + " | " + site
	case v.TitleKey != "":
		return v.T(v.TitleKey) + " | " + site
	default:
		return site
	}
}

// Heading — заголовок страницы без названия сайта.
func (v View) Heading() string {
	if v.Title != "" {
		return v.Title
	}
	return v.T(v.TitleKey)
}

// Locales — поддерживаемые языки (для форм с переводами).
func (v View) Locales() []string {
	return i18n.Locales
}

// LangLink — ссылка переключателя языка.
type LangLink struct {
	Lang   string
	Href   string
	Active bool
}

// LangLinks — ссылки на ту же страницу на других языках.
func (v View) LangLinks() []LangLink {
	links := make([]LangLink, 0, len(i18n.Locales))
	for _, l := range i18n.Locales {
		links = append(links, LangLink{
			Lang:   l,
			Href:   i18n.SwitchPath(v.Path, l),
			Active: l == v.Lang,
		})
	}
	return links
}

// CrumbText — подпись крошки.
func (v View) CrumbText(c nav.Crumb) string {
	if c.LabelKey != "" {
		return v.T(c.LabelKey)
	}
	return c.Label
}

// FlashText — текст одноразового сообщения.
func (v View) FlashText() string {
	if v.Flash == nil {
		return ""
	}
	msg := v.T(v.Flash.Key)
	if v.Flash.Extra != "" {
		msg += " " + v.Flash.Extra
	}
	return msg
}

// Href строит путь с языковым префиксом.
func (v View) Href(path string) string {
	return "/" + v.Lang + path
}

// component оборачивает шаблон страницы в templ.Component.
func component(name string, v View) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		t, ok := registry[name]
		if !ok {
			return fmt.Errorf("страница %q не найдена", name)
		}
		return t.ExecuteTemplate(w, "layout", v)
	})
}

// ActionsContext — данные частичного шаблона row_actions.
type ActionsContext struct {
	View View
	Row  RowActions
}

// Actions передаёт ссылки действий строки в частичный шаблон.
func (v View) Actions(r RowActions) ActionsContext {
	return ActionsContext{View: v, Row: r}
}

// Options переводит подписи элементов списка, заданные ключом.
func (v View) Options(opts []Option) []Option {
	result := make([]Option, len(opts))
	for i, o := range opts {
		if o.LabelKey != "" {
			o.Label = v.T(o.LabelKey)
		}
		result[i] = o
	}
	return result
}
