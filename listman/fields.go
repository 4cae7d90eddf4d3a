// Package listman implements the generic list-editing workspace used by
// every repeatable content section of the admin console: a field-descriptor
// driven form over a collection, with a small editing state machine that
// allows at most one in-progress edit at a time.
package listman

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Kind is the input control rendered for a field.
type Kind string

const (
	Text     Kind = "text"
	Textarea Kind = "textarea"
	File     Kind = "file"
	Select   Kind = "select"
	Number   Kind = "number"
	Checkbox Kind = "checkbox"
)

// Field describes a single input on a list item form.
type Field struct {
	Name     string   `yaml:"name"`
	Label    string   `yaml:"label"`
	Kind     Kind     `yaml:"kind"`
	Options  []string `yaml:"options,omitempty"`
	Required bool     `yaml:"required,omitempty"`
}

// Definition declares one repeatable content type: which backend resource it
// lives under and which fields its form carries. Definitions are loaded from
// the embedded defs/ directory so the supported set is checkable at build
// time rather than assembled ad hoc per screen.
type Definition struct {
	Name     string  `yaml:"name"`     // registry key, e.g. "benefits"
	Resource string  `yaml:"resource"` // backend resource, e.g. "careers_page/benefits"
	Title    string  `yaml:"title"`    // section heading
	Singular string  `yaml:"singular"` // "benefit", used in buttons and confirms
	Fields   []Field `yaml:"fields"`
}

//go:embed defs/*.yaml
var defsFS embed.FS

var (
	loadOnce sync.Once
	loadErr  error
	registry map[string]Definition
)

func load() {
	registry = make(map[string]Definition)
	entries, err := fs.ReadDir(defsFS, "defs")
	if err != nil {
		loadErr = err
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		raw, err := defsFS.ReadFile("defs/" + e.Name())
		if err != nil {
			loadErr = err
			return
		}
		var def Definition
		if err := yaml.Unmarshal(raw, &def); err != nil {
			loadErr = fmt.Errorf("parse %s: %w", e.Name(), err)
			return
		}
		if err := validate(def, e.Name()); err != nil {
			loadErr = err
			return
		}
		registry[def.Name] = def
	}
}

func validate(def Definition, file string) error {
	if def.Name == "" || def.Resource == "" {
		return fmt.Errorf("definition %s: name and resource are required", file)
	}
	if len(def.Fields) == 0 {
		return fmt.Errorf("definition %s: no fields", file)
	}
	seen := make(map[string]struct{}, len(def.Fields))
	for _, f := range def.Fields {
		if f.Name == "" {
			return fmt.Errorf("definition %s: field with empty name", file)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("definition %s: duplicate field %q", file, f.Name)
		}
		seen[f.Name] = struct{}{}
		switch f.Kind {
		case Text, Textarea, File, Select, Number, Checkbox:
		case "":
			return fmt.Errorf("definition %s: field %q missing kind", file, f.Name)
		default:
			return fmt.Errorf("definition %s: field %q has unknown kind %q", file, f.Name, f.Kind)
		}
		if f.Kind == Select && len(f.Options) == 0 {
			return fmt.Errorf("definition %s: select field %q has no options", file, f.Name)
		}
	}
	return nil
}

// Get returns a definition by registry name.
func Get(name string) (Definition, bool) {
	loadOnce.Do(load)
	if loadErr != nil {
		return Definition{}, false
	}
	def, ok := registry[name]
	return def, ok
}

// Definitions returns every registered definition, sorted by name.
func Definitions() ([]Definition, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	defs := make([]Definition, 0, len(registry))
	for _, d := range registry {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs, nil
}
