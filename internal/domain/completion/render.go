package completion

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

const defaultCompleteHTML = "<em>Thanks for your feedback!</em>"

// pages holds the parsed public page templates.
type pages struct {
	base      *template.Template
	templates map[string]*template.Template
}

// trusted marks store-authored HTML (survey descriptions, thank-you
// content) as safe. Only authenticated store users can write it.
func trusted(s string) template.HTML {
	return template.HTML(s)
}

func newPages() *pages {
	funcs := template.FuncMap{"trusted": trusted}
	p := &pages{
		base:      template.Must(template.New("base").Parse(BaseTemplate)),
		templates: make(map[string]*template.Template),
	}
	for name, content := range map[string]string{
		"form":     SurveyFormTemplate,
		"terminal": TerminalTemplate,
		"complete": CompleteTemplate,
	} {
		p.templates[name] = template.Must(template.New(name).Funcs(funcs).Parse(content))
	}
	return p
}

type layout struct {
	Title     string
	LogoURL   string
	StoreName string
	Content   template.HTML
}

func (p *pages) render(w http.ResponseWriter, status int, name string, page layout, data interface{}) {
	var content bytes.Buffer
	if err := p.templates[name].Execute(&content, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render page")
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}
	page.Content = template.HTML(content.String())

	var out bytes.Buffer
	if err := p.base.Execute(&out, page); err != nil {
		log.Error().Err(err).Msg("render layout")
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	w.Write(out.Bytes())
}

type terminalData struct {
	Heading string
	Message string
}

func (p *pages) notFound(w http.ResponseWriter) {
	p.render(w, http.StatusNotFound, "terminal", layout{Title: "Not Found"}, terminalData{
		Heading: "Not Found",
		Message: "This QR code is not linked to any location.",
	})
}

func (p *pages) unavailable(w http.ResponseWriter, v *View) {
	p.render(w, http.StatusOK, "terminal", storeLayout(v, "Survey Unavailable"), terminalData{
		Heading: "Survey Unavailable",
		Message: "This location does not have an active survey at the moment.",
	})
}

func (p *pages) failure(w http.ResponseWriter) {
	p.render(w, http.StatusInternalServerError, "terminal", layout{Title: "Error"}, terminalData{
		Heading: "Something went wrong",
		Message: "Please try again in a moment.",
	})
}

func storeLayout(v *View, title string) layout {
	return layout{
		Title:     title,
		LogoURL:   v.Store.LogoURL.String,
		StoreName: v.Store.Name,
	}
}
