// Package template renders form submissions into HTML email bodies.
package template

import (
	"fmt"
	htmltemplate "html/template"
	"strconv"
	"strings"
	"time"
)

const (
	notProvided  = "Not provided"
	none         = "None"
	notSpecified = "Not specified"

	// SubmittedLayout mirrors the en-US locale string of the browser-era emails.
	SubmittedLayout = "1/2/2006, 3:04:05 PM"
)

// Options selects the presentation variant.
type Options struct {
	// Advanced enables empty-field and empty-section omission.
	Advanced bool
	// IncludeEmptyFields keeps placeholder items in advanced mode.
	IncludeEmptyFields bool
	CompactMode        bool
	CustomStyles       bool
}

// Renderer turns a form layout plus submitted values into HTML.
type Renderer struct {
	opts Options
	now  func() time.Time
}

func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts, now: time.Now}
}

// WithClock returns a copy of the renderer using now for the submission timestamp.
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	cp := *r
	cp.now = now
	return &cp
}

type item struct {
	Label string
	Value string
}

type section struct {
	Title string
	Items []item
}

type page struct {
	Heading     string
	Sections    []section
	Signature   bool
	Lang        string
	SubmittedOn string
	Compact     bool
	Styles      bool
	Footer      bool
}

var pageTmpl = htmltemplate.Must(htmltemplate.New("email").Parse(`{{if .Styles}}
    <style>
      body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
      h2 { color: #2c3e50; border-bottom: 2px solid #3498db; padding-bottom: 10px; }
      h3 { color: #34495e; margin-top: 20px; }
      ul { background-color: #f8f9fa; padding: 15px; border-radius: 5px; }
      li { margin-bottom: 5px; }
      strong { color: #2c3e50; }
      .footer { margin-top: 20px; padding-top: 15px; border-top: 1px solid #ddd; font-size: 0.9em; color: #666; }
    </style>
  {{end}}
    <h2>{{.Heading}}</h2>
{{- range .Sections}}
    <h3>{{.Title}}</h3>
    <ul>
{{- range .Items}}
      {{if $.Compact}}<li>{{.Label}}: {{.Value}}</li>{{else}}<li><strong>{{.Label}}:</strong> {{.Value}}</li>{{end}}
{{- end}}
    </ul>
{{- end}}
{{if .Signature}}
    <h3>Signature</h3><p>Digital signature provided</p>
{{end}}
{{- if .Footer}}
    <div class="footer">
{{- end}}
    <p><strong>Form Language:</strong> {{.Lang}}</p>
    <p><strong>Submitted on:</strong> {{.SubmittedOn}}</p>
{{- if .Footer}}
    </div>
{{- end}}
`))

// Render never fails: absent values degrade to placeholder text.
func (r *Renderer) Render(form Form, values map[string]any, lang string) string {
	p := page{
		Heading:     form.Heading,
		Signature:   form.SignatureBlock && isPresent(values["signature"]),
		Lang:        lang,
		SubmittedOn: r.now().Format(SubmittedLayout),
		Compact:     r.opts.Advanced && r.opts.CompactMode,
		Styles:      r.opts.Advanced && r.opts.CustomStyles,
		Footer:      r.opts.Advanced,
	}

	for _, s := range form.Sections {
		rendered := r.section(form, s, values)
		if r.opts.Advanced && len(rendered.Items) == 0 {
			continue
		}
		p.Sections = append(p.Sections, rendered)
	}

	var b strings.Builder
	// Execution only fails on writer errors; strings.Builder never returns one.
	_ = pageTmpl.Execute(&b, p)
	return b.String()
}

func (r *Renderer) section(form Form, s Section, values map[string]any) section {
	out := section{Title: s.Title}
	fields := s.Fields

	switch {
	case s.Key == SectionPersonal:
		r.add(&out, "Name", formatName(values), isPresent(values["firstName"]) || isPresent(values["lastName"]))
		fields = withoutNameFields(fields)
	case s.Key == SectionAddress && form.AddressSummary:
		summary := formatAddress(values)
		r.add(&out, "Full Address", summary, summary != notProvided)
	}

	for _, f := range fields {
		value, present := formatField(f, values[f.Key])
		r.add(&out, f.Label, value, present)
	}
	return out
}

// add appends an item unless advanced mode drops empty placeholders.
func (r *Renderer) add(s *section, label, value string, present bool) {
	if r.opts.Advanced && !r.opts.IncludeEmptyFields {
		if !present || value == notProvided || value == none {
			return
		}
	}
	s.Items = append(s.Items, item{Label: label, Value: value})
}

// formatField returns the display value and whether a real value was present.
func formatField(f Field, v any) (string, bool) {
	switch f.Type {
	case FieldBoolean:
		if truthy(v) {
			return "Yes", true
		}
		return "No", true
	case FieldArray:
		list := toStrings(v)
		if len(list) == 0 {
			return none, false
		}
		return strings.Join(list, ", "), true
	case FieldNumber:
		if v == nil {
			return defaultOr(f.Default, notSpecified), false
		}
		return formatNumber(v), true
	case FieldSignature:
		if isPresent(v) {
			return "Digital signature provided", true
		}
		return notProvided, false
	default:
		if !isPresent(v) {
			return defaultOr(f.Default, notProvided), false
		}
		return fmt.Sprint(v), true
	}
}

func formatName(values map[string]any) string {
	first, _ := values["firstName"].(string)
	last, _ := values["lastName"].(string)
	if first == "" && last == "" {
		return notProvided
	}
	if first == "" {
		first = notProvided
	}
	return strings.TrimSpace(first + " " + last)
}

func formatAddress(values map[string]any) string {
	var parts []string
	for _, key := range []string{"address", "city", "state", "zipCode"} {
		if s, ok := values[key].(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return notProvided
	}
	return strings.Join(parts, ", ")
}

func withoutNameFields(fields []Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Key == "firstName" || f.Key == "lastName" {
			continue
		}
		out = append(out, f)
	}
	return out
}

func formatNumber(v any) string {
	switch n := v.(type) {
	case fmt.Stringer:
		return n.String()
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	default:
		return fmt.Sprint(n)
	}
}

func toStrings(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, e := range l {
			out = append(out, fmt.Sprint(e))
		}
		return out
	default:
		return nil
	}
}

func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != ""
	default:
		return true
	}
}

func isPresent(v any) bool {
	switch s := v.(type) {
	case nil:
		return false
	case string:
		return s != ""
	default:
		return true
	}
}

func defaultOr(def, fallback string) string {
	if def != "" {
		return def
	}
	return fallback
}
