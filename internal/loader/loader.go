// Package loader discovers component descriptor files, imports them and
// registers the resulting records. Importing a module never executes
// anything: descriptors are passive documents, and registration is an
// explicit step the loader performs against an injected registry.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"loom/internal/component"
	"loom/internal/registry"
	"loom/pkg/logging"
)

// Options tune loader behavior.
type Options struct {
	// StrictSchemas promotes a MissingSchemaWarning to an import failure.
	StrictSchemas bool
}

// Loader imports descriptors from a components root into a registry.
type Loader struct {
	root     string
	registry *registry.Registry
	opts     Options
}

// New creates a loader for the given components root.
func New(root string, reg *registry.Registry, opts Options) *Loader {
	return &Loader{root: root, registry: reg, opts: opts}
}

// Root returns the components root the loader reads from.
func (l *Loader) Root() string {
	return l.root
}

// CategoryDir returns the directory a category's descriptors live in.
func (l *Loader) CategoryDir(cat component.Category) string {
	return filepath.Join(l.root, cat.Directory())
}

// Counts records how many modules registered per category.
type Counts map[component.Category]int

func (c Counts) String() string {
	parts := make([]string, 0, len(c))
	for _, cat := range component.Categories() {
		parts = append(parts, fmt.Sprintf("%s=%d", cat.Directory(), c[cat]))
	}
	return strings.Join(parts, " ")
}

// LoadAll discovers and registers every category once. Import failures are
// logged per module and never abort the rest of the load.
func (l *Loader) LoadAll(ctx context.Context) (Counts, error) {
	counts := make(Counts, len(component.Categories()))
	for _, cat := range component.Categories() {
		if err := ctx.Err(); err != nil {
			return counts, err
		}
		n, err := l.LoadCategory(cat)
		if err != nil {
			return counts, err
		}
		counts[cat] = n
	}
	logging.Info("Loader", "Loaded components: %s", counts)
	return counts, nil
}

// LoadCategory discovers and registers one category. The returned count is
// the number of modules that imported successfully. Only a discovery failure
// (unreadable directory) is returned as an error.
func (l *Loader) LoadCategory(cat component.Category) (int, error) {
	modules, err := Discover(l.CategoryDir(cat))
	if err != nil {
		return 0, fmt.Errorf("failed to discover %s: %w", cat.Directory(), err)
	}

	loaded := 0
	for _, mod := range modules {
		if err := l.importAndRegister(cat, mod); err != nil {
			logging.Error("Loader", err, "Skipping %s module %s", cat, mod.ID)
			continue
		}
		loaded++
	}
	return loaded, nil
}

// importAndRegister imports one module and registers all its records.
func (l *Loader) importAndRegister(cat component.Category, mod Module) error {
	records, err := l.ImportModule(cat, mod)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if _, err := l.registry.Register(rec); err != nil {
			return &ImportError{ModuleID: mod.ID, Path: mod.Path, Err: err}
		}
		logging.Info("Loader", "Registered %s: %s (module %s)", cat, rec.Name, mod.ID)
	}
	return nil
}

// ImportModule parses and validates one descriptor file, returning the
// records it defines. Template files may hold one descriptor or a list;
// every other category holds exactly one.
func (l *Loader) ImportModule(cat component.Category, mod Module) ([]*component.Record, error) {
	data, err := os.ReadFile(mod.Path)
	if err != nil {
		return nil, &ImportError{ModuleID: mod.ID, Path: mod.Path, Err: err}
	}

	var records []*component.Record
	switch cat {
	case component.CategoryCapability:
		records, err = l.importCapability(mod, data)
	case component.CategoryResource:
		records, err = l.importResource(mod, data)
	case component.CategoryTemplate:
		records, err = l.importTemplates(mod, data)
	case component.CategoryInterceptor:
		records, err = l.importInterceptor(mod, data)
	default:
		err = fmt.Errorf("unknown category %q", cat)
	}
	if err != nil {
		var imp *ImportError
		if errors.As(err, &imp) {
			return nil, err
		}
		return nil, &ImportError{ModuleID: mod.ID, Path: mod.Path, Err: err}
	}
	return records, nil
}

func (l *Loader) importCapability(mod Module, data []byte) ([]*component.Record, error) {
	var spec component.CapabilitySpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return []*component.Record{l.newRecord(component.CategoryCapability, spec.Name, spec.Description, &spec, mod)}, nil
}

func (l *Loader) importResource(mod Module, data []byte) ([]*component.Record, error) {
	var spec component.ResourceSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.MIMEType == "" {
		spec.MIMEType = "text/plain"
	}
	if spec.File != "" && !filepath.IsAbs(spec.File) {
		spec.File = filepath.Join(filepath.Dir(mod.Path), spec.File)
	}
	return []*component.Record{l.newRecord(component.CategoryResource, spec.Name, spec.Description, &spec, mod)}, nil
}

func (l *Loader) importTemplates(mod Module, data []byte) ([]*component.Record, error) {
	specs, err := normalizeTemplates(data)
	if err != nil {
		return nil, err
	}

	schemaPath := SchemaPathFor(mod.Path)
	records := make([]*component.Record, 0, len(specs))
	for i := range specs {
		spec := specs[i]
		if err := spec.Validate(); err != nil {
			return nil, err
		}

		injected, err := InjectOutputSchema(spec.Prompt, schemaPath)
		if err != nil {
			var missing *MissingSchemaWarning
			if errors.As(err, &missing) {
				missing.Path = mod.Path
				if l.opts.StrictSchemas {
					return nil, missing
				}
				logging.Warn("Loader", "%v", missing)
			} else {
				logging.Error("Loader", err, "Schema injection failed for %s, registering without injection", mod.ID)
			}
		}
		spec.Prompt = injected

		records = append(records, l.newRecord(component.CategoryTemplate, spec.Name, spec.Description, &spec, mod))
	}
	return records, nil
}

func (l *Loader) importInterceptor(mod Module, data []byte) ([]*component.Record, error) {
	var spec component.InterceptorSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return []*component.Record{l.newRecord(component.CategoryInterceptor, spec.Name, spec.Description, &spec, mod)}, nil
}

// normalizeTemplates accepts either a single template document or a list.
func normalizeTemplates(data []byte) ([]component.TemplateSpec, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("empty template document")
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		var one component.TemplateSpec
		if err := root.Decode(&one); err != nil {
			return nil, err
		}
		return []component.TemplateSpec{one}, nil
	case yaml.SequenceNode:
		var many []component.TemplateSpec
		if err := root.Decode(&many); err != nil {
			return nil, err
		}
		return many, nil
	default:
		return nil, fmt.Errorf("template document must be a mapping or a list of mappings")
	}
}

func (l *Loader) newRecord(cat component.Category, name, description string, spec any, mod Module) *component.Record {
	return &component.Record{
		ID:           uuid.NewString(),
		Category:     cat,
		Name:         name,
		Description:  description,
		Spec:         spec,
		ModuleID:     mod.ID,
		SourcePath:   mod.Path,
		RegisteredAt: time.Now(),
	}
}

// Reload re-imports the descriptor at path after a filesystem change. A
// deleted file unregisters its records; a changed file replaces them. When
// re-import fails the previous registrations stay in place.
func (l *Loader) Reload(path string) error {
	cat, mod, ok := l.Resolve(path)
	if !ok {
		return fmt.Errorf("%s is not a loadable descriptor path", path)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		removed := l.registry.RemoveBySource(path)
		logging.Info("Loader", "Unregistered %d record(s) for deleted %s module %s", removed, cat, mod.ID)
		return nil
	}

	records, err := l.ImportModule(cat, mod)
	if err != nil {
		return err
	}

	// The file parsed; swap its records atomically from the registry's
	// point of view. Renamed components inside the file disappear here.
	l.registry.RemoveBySource(path)
	for _, rec := range records {
		if _, err := l.registry.Register(rec); err != nil {
			return &ImportError{ModuleID: mod.ID, Path: mod.Path, Err: err}
		}
	}
	logging.Info("Loader", "Reloaded %s module %s (%d record(s))", cat, mod.ID, len(records))
	return nil
}

// Resolve maps an absolute or root-relative descriptor path to its category
// and module. It applies the same exclusion rules as discovery.
func (l *Loader) Resolve(path string) (component.Category, Module, bool) {
	rel, err := filepath.Rel(l.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", Module{}, false
	}

	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		return "", Module{}, false
	}
	cat, ok := component.ParseCategory(parts[0])
	if !ok {
		return "", Module{}, false
	}
	for _, dir := range parts[1 : len(parts)-1] {
		if dir == "examples" || strings.HasPrefix(dir, "_") {
			return "", Module{}, false
		}
	}
	if !isDescriptorFile(path) {
		return "", Module{}, false
	}

	relToCategory := filepath.Join(parts[1:]...)
	return cat, Module{ID: moduleID(relToCategory), Path: path}, true
}
