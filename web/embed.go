package web

import (
	"embed"
	"html/template"
	"io/fs"
	"time"

	"github.com/picklemart/internal/catalog"
)

//go:embed templates/*.html static/*
var files embed.FS

// Templates 解析全部页面模板
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(files, "templates/*.html")
}

// Static 静态资源目录
func Static() (fs.FS, error) {
	return fs.Sub(files, "static")
}

// FuncMap 模板函数
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"year": func(t time.Time) int { return t.Year() },
		"categoryTitle": func(slug string) string {
			if category, ok := catalog.Lookup(slug); ok {
				return category.Title
			}
			return slug
		},
	}
}
