package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"text/template"
)

//go:embed defaults
var defaults embed.FS

// Load builds a registry from the embedded defaults, then overlays any
// prompts and schemas found under dir. A missing dir is not an error.
//
// Expected layout (both embedded and on disk):
//
//	prompts/<category>/<name>.json   -> ID "<category>.<name>"
//	schemas/<name>.json              -> ID "<name>"
func Load(dir string) (*Registry, error) {
	r := NewRegistry()

	embedded, err := fs.Sub(defaults, "defaults")
	if err != nil {
		return nil, err
	}
	if err := loadFS(r, embedded); err != nil {
		return nil, fmt.Errorf("failed to load embedded prompts: %w", err)
	}

	if dir == "" {
		return r, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err := loadFS(r, os.DirFS(dir)); err != nil {
		return nil, fmt.Errorf("failed to load prompts from %s: %w", dir, err)
	}
	return r, nil
}

func loadFS(r *Registry, fsys fs.FS) error {
	if err := walkJSON(fsys, "prompts", func(p string, data []byte) error {
		var pt PromptTemplate
		if err := json.Unmarshal(data, &pt); err != nil {
			return fmt.Errorf("failed to parse %s: %w", p, err)
		}
		rel := strings.TrimSuffix(strings.TrimPrefix(p, "prompts/"), ".json")
		if pt.ID == "" {
			pt.ID = strings.ReplaceAll(rel, "/", ".")
		}
		if pt.Category == "" {
			pt.Category = "default"
			if i := strings.IndexByte(rel, '/'); i > 0 {
				pt.Category = rel[:i]
			}
		}
		return r.Register(&pt)
	}); err != nil {
		return err
	}

	return walkJSON(fsys, "schemas", func(p string, data []byte) error {
		if !json.Valid(data) {
			return fmt.Errorf("schema %s is not valid JSON", p)
		}
		return r.RegisterSchema(&ResponseSchema{
			ID:         strings.TrimSuffix(path.Base(p), ".json"),
			JSONSchema: string(data),
		})
	})
}

func walkJSON(fsys fs.FS, root string, fn func(path string, data []byte) error) error {
	if _, err := fs.Stat(fsys, root); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".json" {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		return fn(p, data)
	})
}

// RenderUserPrompt executes the user prompt template with vars.
func RenderUserPrompt(pt *PromptTemplate, vars Vars) (string, error) {
	if pt.UserPromptTmpl == "" {
		return "", nil
	}

	data := make(map[string]interface{}, len(vars)+len(pt.Variables))
	for k, v := range vars {
		data[k] = v
	}
	for _, v := range pt.Variables {
		if _, ok := data[v.Name]; ok {
			continue
		}
		if v.Required && v.Default == "" {
			return "", fmt.Errorf("prompt %s: missing required variable %s", pt.ID, v.Name)
		}
		data[v.Name] = v.Default
	}

	tmpl, err := template.New(pt.ID).Option("missingkey=error").Parse(pt.UserPromptTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
