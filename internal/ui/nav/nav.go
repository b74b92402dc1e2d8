// Пакет nav — меню личного кабинета и «хлебные крошки».
// Подписи возвращаются ключами каталога переводов; перевод выполняет шаблон.
package nav

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/nirudef/aoka-web/internal/domain/rbac"
	"github.com/nirudef/aoka-web/internal/ui/i18n"
)

// HomeLabel — подпись первой крошки (аббревиатура коллегии, не переводится).
const HomeLabel = "АОКА"

// LogoutAction — адрес формы выхода.
const LogoutAction = "/api/auth/logout"

// Link — пункт меню кабинета.
type Link struct {
	Href     string
	LabelKey string
	Active   bool
}

// Menu — меню кабинета.
// Dashboard выводится над списком и в Links не входит:
// Links совпадает с rbac.VisibleSections, профиль первым.
type Menu struct {
	Dashboard    Link
	Links        []Link
	LogoutAction string
}

// Sidebar строит меню из разделов, доступных ролям участника.
// Пункт активен, если currentPath совпадает с его адресом или вложен в него.
func Sidebar(lang string, roles []string, currentPath string) Menu {
	base := "/" + lang + "/cabinet"

	dashboard := Link{
		Href:     base,
		LabelKey: "nav.dashboard",
		Active:   currentPath == base,
	}
	var links []Link
	for _, section := range rbac.VisibleSections(roles) {
		href := base + "/" + string(section)
		links = append(links, Link{
			Href:     href,
			LabelKey: "sections." + string(section),
			Active:   currentPath == href || strings.HasPrefix(currentPath, href+"/"),
		})
	}

	return Menu{Dashboard: dashboard, Links: links, LogoutAction: LogoutAction}
}

// Crumb — элемент «хлебных крошек».
// Для известных сегментов задан LabelKey, для остальных — готовый Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Current  bool
}

// knownSegments — сегменты пути с подписью из каталога.
var knownSegments = map[string]bool{
	"cabinet":    true,
	"profile":    true,
	"users":      true,
	"branches":   true,
	"offices":    true,
	"reports":    true,
	"articles":   true,
	"categories": true,
	"lawyers":    true,
	"collegium":  true,
	"center":     true,
	"contacts":   true,
	"login":      true,
}

// Breadcrumbs строит крошки по пути страницы.
// Языковой сегмент пропускается (первая крошка ведёт на главную языка),
// сегменты-UUID пропускаются, new и edit подписываются по родительскому разделу.
func Breadcrumbs(path string) []Crumb {
	lang := i18n.LocaleFromPath(path)
	caser := cases.Title(i18n.Tag(lang))

	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) > 0 && i18n.IsSupported(segments[0]) {
		segments = segments[1:]
	}

	crumbs := []Crumb{{Href: "/" + lang, Label: HomeLabel}}
	href := "/" + lang
	parent := ""

	for _, seg := range segments {
		if seg == "" {
			continue
		}
		href += "/" + seg

		if _, err := uuid.Parse(seg); err == nil && len(seg) == 36 {
			continue
		}

		c := Crumb{Href: href}
		switch {
		case (seg == "new" || seg == "edit") && parent != "":
			c.LabelKey = "breadcrumbs." + seg + "." + parent
		case knownSegments[seg]:
			c.LabelKey = "breadcrumbs." + seg
		default:
			c.Label = caser.String(strings.ReplaceAll(seg, "-", " "))
		}
		crumbs = append(crumbs, c)

		if knownSegments[seg] {
			parent = seg
		}
	}

	crumbs[len(crumbs)-1].Current = true
	return crumbs
}
