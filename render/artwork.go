package render

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"whosoever-apparel/utils"
)

//go:embed assets/designs/*.svg.tmpl
var designFS embed.FS

var fieldPattern = regexp.MustCompile(`\{\{\s*\.([A-Za-z0-9_]+)\s*\}\}`)

// artwork is a recolorable design template. Each declared attribute key is a template field.
type artwork struct {
	name   string
	tmpl   *template.Template
	width  float64
	height float64
	fields []string
}

// aspect is height/width of the artwork viewBox
func (a *artwork) aspect() float64 {
	return a.height / a.width
}

// render executes the template with the full key->color mapping.
// A key missing from colors fails the render instead of emitting "<no value>".
func (a *artwork) render(colors map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := a.tmpl.Execute(&buf, colors); err != nil {
		return "", fmt.Errorf("failed to render artwork %s: %w", a.name, err)
	}
	return buf.String(), nil
}

func loadArtwork() (map[string]*artwork, error) {
	files, err := fs.Glob(designFS, "assets/designs/*.svg.tmpl")
	if err != nil {
		return nil, err
	}
	loaded := make(map[string]*artwork, len(files))
	for _, file := range files {
		raw, err := designFS.ReadFile(file)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(path.Base(file), ".svg.tmpl")
		tmpl, err := template.New(name).Option("missingkey=error").Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("artwork %s: %w", name, err)
		}

		// viewBox does not depend on colors; probe with template fields blanked out
		probe := fieldPattern.ReplaceAllString(string(raw), utils.NeutralColor)
		w, h, err := utils.ViewBox(probe)
		if err != nil {
			return nil, fmt.Errorf("artwork %s: %w", name, err)
		}
		loaded[name] = &artwork{name: name, tmpl: tmpl, width: w, height: h, fields: templateFields(string(raw))}
	}
	return loaded, nil
}

func templateFields(raw string) []string {
	seen := map[string]bool{}
	var fields []string
	for _, m := range fieldPattern.FindAllStringSubmatch(raw, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			fields = append(fields, m[1])
		}
	}
	sort.Strings(fields)
	return fields
}
