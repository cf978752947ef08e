// Package site renders a resolved instruction corpus as a static HTML
// site with one SVG bit-field diagram per instruction.
package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"

	"github.com/rvtools/rvenc/internal/isa"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Model is everything the generator needs.
type Model struct {
	Title        string
	Extensions   map[string]string
	Instructions []isa.Resolved
}

type group struct {
	Name         string
	Instructions []isa.Resolved
}

type indexData struct {
	Title  string
	Groups []group
}

type instructionData struct {
	Resolved      isa.Resolved
	ExtensionName string
	HasDiagram    bool
}

// Generate writes the site into dir. A renderer failure for one
// instruction is returned as a warning and that page gets no diagram; it
// never aborts the rest of the corpus.
func Generate(dir string, model Model) (warnings []error, err error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	for _, sub := range []string{"insns", "svg"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("creating site directory: %w", err)
		}
	}

	for _, r := range model.Instructions {
		hasDiagram := true
		var buf bytes.Buffer
		if renderErr := RenderSVG(&buf, r.Layout, r.Width); renderErr != nil {
			warnings = append(warnings, fmt.Errorf("rendering %s: %w", r.Instruction.Name, renderErr))
			hasDiagram = false
		} else {
			svgPath := filepath.Join(dir, "svg", r.Instruction.Name+".svg")
			if writeErr := os.WriteFile(svgPath, buf.Bytes(), 0o644); writeErr != nil {
				return warnings, fmt.Errorf("writing %s: %w", svgPath, writeErr)
			}
		}

		data := instructionData{
			Resolved:      r,
			ExtensionName: isa.ExtensionName(model.Extensions, r.Instruction.Extension),
			HasDiagram:    hasDiagram,
		}
		pagePath := filepath.Join(dir, "insns", r.Instruction.Name+".html")
		if err := renderTemplate(tmpl, "instruction.html.tmpl", pagePath, data); err != nil {
			return warnings, err
		}
	}

	index := indexData{
		Title:  model.Title,
		Groups: groupByExtension(model.Instructions, model.Extensions),
	}
	if err := renderTemplate(tmpl, "index.html.tmpl", filepath.Join(dir, "index.html"), index); err != nil {
		return warnings, err
	}

	return warnings, nil
}

func renderTemplate(tmpl *template.Template, name, path string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := tmpl.ExecuteTemplate(f, name, data); err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return nil
}

func groupByExtension(resolved []isa.Resolved, extensions map[string]string) []group {
	byExt := make(map[string][]isa.Resolved)
	for _, r := range resolved {
		name := isa.ExtensionName(extensions, r.Instruction.Extension)
		if r.Instruction.Extension == "" {
			name = "Other"
		}
		byExt[name] = append(byExt[name], r)
	}

	groups := make([]group, 0, len(byExt))
	for name, insts := range byExt {
		sort.SliceStable(insts, func(i, j int) bool {
			return insts[i].Instruction.Name < insts[j].Instruction.Name
		})
		groups = append(groups, group{Name: name, Instructions: insts})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups
}
