package funcs

import (
	"strings"
	"text/template"
	"time"
)

var TemplateFuncs = template.FuncMap{
	"now":   time.Now,
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}
