package templates

import (
	"embed"
	"errors"
	"html/template"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio/common"
)

//go:embed *.html
var files embed.FS

// Funcs are the helpers available to every page template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"now": func() time.Time {
			return time.Now()
		},
		"markdown": common.Markdown,
		"join":     strings.Join,
		"dict":     dict,
	}
}

// dict builds a map from key/value pairs so partials can take more than one
// argument.
func dict(pairs ...interface{}) (map[string]interface{}, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict needs an even number of arguments")
	}
	m := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, errors.New("dict keys must be strings")
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// Parse parses the embedded page templates. Each file is addressed by its
// base name, e.g. "home.html".
func Parse() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(files, "*.html")
}

// Load installs the page templates on router.
func Load(router *gin.Engine) error {
	tmpl, err := Parse()
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)
	return nil
}
