package views

import (
	"embed"
	"html/template"
	"strings"

	"github.com/yigit/studentregistry/internal/app/models"
	"github.com/yigit/studentregistry/internal/app/models/dto"
	"github.com/yigit/studentregistry/internal/pkg/flash"
)

//go:embed templates/*.html
var templatesFS embed.FS

// IndexTemplate is the name of the student list page
const IndexTemplate = "index.html"

// IndexPage is the data rendered by IndexTemplate
type IndexPage struct {
	Students []*models.Student
	Flashes  []flash.Message
	Filter   dto.StudentFilterQuery
	Filtered bool
}

// Funcs are the helpers available to every page
var Funcs = template.FuncMap{
	"photoURL": PhotoURL,
}

// Load parses the embedded page templates
func Load() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(templatesFS, "templates/*.html")
}

// PhotoURL turns a stored photo reference into something an <img> can load:
// absolute URLs pass through, everything else is served from /static.
func PhotoURL(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return "/static/" + strings.TrimPrefix(ref, "/")
}
