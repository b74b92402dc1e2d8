package validate

import "strings"

// UserForm — поля формы пользователя (своего профиля или чужого).
type UserForm struct {
	FirstName       string
	LastName        string
	MiddleName      string
	Email           string
	IIN             string
	Phone           string
	LicenseNumber   string
	LicenseIssuedAt string
	JoinedAt        string
	BranchID        string
	LawOfficeID     string
	Address         string
	Roles           []string
	Password        string
}

// User проверяет форму пользователя. isLawyer включает обязательность
// лицензии и даты вступления. Порядок ошибок фиксирован: имя, фамилия,
// email, поля адвоката, ИИН, телефон.
func User(f UserForm, isLawyer bool) Errors {
	var errs Errors

	if blank(f.FirstName) {
		errs.Add("first_name", "validation.firstNameRequired")
	}
	if blank(f.LastName) {
		errs.Add("last_name", "validation.lastNameRequired")
	}
	if !emailLooksValid(f.Email) {
		errs.Add("email", "validation.emailInvalid")
	}

	if isLawyer {
		if blank(f.LicenseNumber) {
			errs.Add("license_number", "validation.licenseNumberRequired")
		}
		if blank(f.LicenseIssuedAt) {
			errs.Add("license_issued_at", "validation.licenseIssuedAtRequired")
		}
		if blank(f.JoinedAt) {
			errs.Add("joined_at", "validation.joinedAtRequired")
		}
	}

	if f.IIN != "" && !reIIN.MatchString(f.IIN) {
		errs.Add("iin", "validation.iinInvalid")
	}
	if !blank(f.Phone) && !phoneLooksValid(f.Phone) {
		errs.Add("phone", "validation.phoneInvalid")
	}

	return errs
}

// OrganizationForm — поля формы филиала или конторы.
type OrganizationForm struct {
	Names        map[string]string // lang → название
	Addresses    map[string]string
	Descriptions map[string]string
	Phone        string
	Email        string
	Latitude     string
	Longitude    string
}

// Organization проверяет форму филиала/конторы: название на каждом
// из языков locales, email и телефон обязательны.
func Organization(f OrganizationForm, locales []string) Errors {
	var errs Errors

	for _, l := range locales {
		if blank(f.Names[l]) {
			errs.Add("name_"+l, "validation.nameRequired")
		}
	}
	switch {
	case blank(f.Email):
		errs.Add("email", "validation.emailRequired")
	case !emailLooksValid(f.Email):
		errs.Add("email", "validation.emailInvalid")
	}
	switch {
	case blank(f.Phone):
		errs.Add("phone", "validation.phoneRequired")
	case !phoneLooksValid(f.Phone):
		errs.Add("phone", "validation.phoneInvalid")
	}

	return errs
}

// ArticleForm — поля формы публикации.
type ArticleForm struct {
	Slug        string
	Status      string
	PublishedAt string
	CategoryID  string
	Titles      map[string]string // lang → заголовок
}

// Article проверяет форму публикации: русский заголовок, slug и дата
// публикации обязательны, статус — из списка statuses.
func Article(f ArticleForm, statuses []string) Errors {
	var errs Errors

	if blank(f.Titles["ru"]) {
		errs.Add("title_ru", "validation.titleRequired")
	}
	if blank(f.Slug) {
		errs.Add("slug", "validation.slugRequired")
	}
	if blank(f.PublishedAt) {
		errs.Add("published_at", "validation.publishedAtRequired")
	}
	if !contains(statuses, f.Status) {
		errs.Add("status", "validation.statusInvalid")
	}

	return errs
}

// CategoryForm — поля формы категории.
type CategoryForm struct {
	Key      string
	Position string
	Names    map[string]string
}

// Category проверяет форму категории: ключ из строчных латинских букв
// и подчёркиваний, русское название, целая позиция.
func Category(f CategoryForm) Errors {
	var errs Errors

	switch {
	case blank(f.Key):
		errs.Add("key", "validation.keyRequired")
	case !reCategoryKey.MatchString(f.Key):
		errs.Add("key", "validation.keyInvalid")
	}
	if blank(f.Names["ru"]) {
		errs.Add("name_ru", "validation.nameRequired")
	}
	if p := strings.TrimSpace(f.Position); p != "" && !isInteger(p) {
		errs.Add("position", "validation.positionInvalid")
	}

	return errs
}

// ContactForm — поля формы обратной связи.
type ContactForm struct {
	Name    string
	Email   string
	Message string
}

// Contact проверяет форму обратной связи.
func Contact(f ContactForm) Errors {
	var errs Errors

	if blank(f.Name) {
		errs.Add("name", "validation.nameRequired")
	}
	if !emailLooksValid(f.Email) {
		errs.Add("email", "validation.emailInvalid")
	}
	if blank(f.Message) {
		errs.Add("message", "validation.messageRequired")
	}

	return errs
}

// Login проверяет форму входа.
func Login(email, password string) Errors {
	var errs Errors

	if !emailLooksValid(email) {
		errs.Add("email", "validation.emailInvalid")
	}
	if password == "" {
		errs.Add("password", "validation.passwordRequired")
	}

	return errs
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}

func isInteger(s string) bool {
	if s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
