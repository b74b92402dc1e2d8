// Пакет static — встроенные статические ресурсы сайта.
// Раздаются по /static/*.
package static

import (
	"embed"
	"net/http"
)

//go:embed css/*.css
var content embed.FS

// FileSystem возвращает http.FileSystem для обработки запросов к /static/*.
func FileSystem() http.FileSystem {
	return http.FS(content)
}
