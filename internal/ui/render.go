package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dukerupert/quests/internal/markdown"
	"github.com/dukerupert/quests/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"errorHeader":   ErrorHeader,
	"errorMessages": FullMessages,
	"markdown":      markdown.Render,
	"buttonStyle":   buttonStyle,
	"invalid": func(d Dialog, field string) bool {
		return d.InvalidFields[field]
	},
}).ParseFS(templateFS, "templates/*.html"))

// Render produces the page body for st. It reads st only.
func Render(st State) (template.HTML, error) {
	return execute("app", st)
}

// RenderDocument wraps Render in the full HTML document.
func RenderDocument(st State) (template.HTML, error) {
	return execute("document", st)
}

// RenderRow produces the markup for one row of the list.
func RenderRow(row *Row) (template.HTML, error) {
	return execute("row", row)
}

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// DetailRow returns the row shown in the detail view, or nil.
func (s State) DetailRow() *Row {
	if s.Detail == 0 {
		return nil
	}
	return s.Row(s.Detail)
}

// ErrorHeader is the error panel heading, pluralized by message count.
func ErrorHeader(errs model.ValidationErrors) string {
	n := errs.Count()
	noun := "errors"
	if n == 1 {
		noun = "error"
	}
	return fmt.Sprintf("%d %s prohibited this quest from being saved:", n, noun)
}

// FullMessages flattens errs into display lines. base messages come first
// and stand alone; other fields are prefixed with their capitalized name.
func FullMessages(errs model.ValidationErrors) []string {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		if f != "base" {
			fields = append(fields, f)
		}
	}
	sort.Strings(fields)
	if _, ok := errs["base"]; ok {
		fields = append([]string{"base"}, fields...)
	}

	var out []string
	for _, f := range fields {
		for _, msg := range errs[f] {
			if f == "base" {
				out = append(out, msg)
				continue
			}
			out = append(out, capitalize(f)+" "+msg)
		}
	}
	return out
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ReplaceAll(s[size:], "_", " ")
}

func buttonStyle(b Button) template.CSS {
	if b.PinnedWidth == 0 {
		return ""
	}
	return template.CSS(fmt.Sprintf("min-width: %dch; opacity: 0.6; pointer-events: none", b.PinnedWidth))
}
