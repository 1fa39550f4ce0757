// Package i18n resolves reply texts from YAML catalogs keyed by language.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embedded embed.FS

// Translator resolves localized strings using dot-separated keys.
type Translator interface {
	T(key string) string
	Lang() string
}

type catalog map[string]map[string]string

// Manager stores all available translations.
type Manager struct {
	catalog     catalog
	defaultLang string
}

// Load loads the catalogs compiled into the binary.
func Load(defaultLang string) (*Manager, error) {
	return LoadFS(embedded, "locales", defaultLang)
}

// LoadFromDir loads translations from a directory containing YAML files.
func LoadFromDir(dir, defaultLang string) (*Manager, error) {
	return LoadFS(os.DirFS(dir), ".", defaultLang)
}

// LoadFS loads translations from the YAML files found in dir of fsys.
// Every file holds one top-level mapping per language.
func LoadFS(fsys fs.FS, dir, defaultLang string) (*Manager, error) {
	defaultLang = normalizeLang(defaultLang)
	if defaultLang == "" {
		defaultLang = "en"
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read dir %s: %w", dir, err)
	}

	files := lo.Filter(entries, func(e fs.DirEntry, _ int) bool {
		return !e.IsDir() && isYAML(e.Name())
	})
	if len(files) == 0 {
		return nil, fmt.Errorf("i18n: no yaml files found in %s", dir)
	}

	cat := make(catalog)
	for _, f := range files {
		if err := cat.loadFile(fsys, path.Join(dir, f.Name())); err != nil {
			return nil, err
		}
	}

	if _, ok := cat[defaultLang]; !ok {
		return nil, fmt.Errorf("i18n: default language %q is missing", defaultLang)
	}

	return &Manager{catalog: cat, defaultLang: defaultLang}, nil
}

// Translator returns a translator for lang, or for the default language when lang is unknown.
func (m *Manager) Translator(lang string) Translator {
	if m == nil {
		return translator{}
	}

	lang = normalizeLang(lang)
	if _, ok := m.catalog[lang]; !ok {
		lang = m.defaultLang
	}

	return translator{lang: lang, primary: m.catalog[lang], fallback: m.catalog[m.defaultLang]}
}

// Languages returns the loaded languages in sorted order.
func (m *Manager) Languages() []string {
	if m == nil {
		return nil
	}
	langs := lo.Keys(m.catalog)
	slices.Sort(langs)
	return langs
}

type translator struct {
	lang     string
	primary  map[string]string
	fallback map[string]string
}

func (t translator) Lang() string {
	return t.lang
}

// T returns the text for key, falling back to the default language and then to the key itself.
func (t translator) T(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if v, ok := t.primary[key]; ok && v != "" {
		return v
	}
	if v, ok := t.fallback[key]; ok && v != "" {
		return v
	}
	return key
}

func (c catalog) loadFile(fsys fs.FS, name string) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("i18n: read file %s: %w", name, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("i18n: parse file %s: %w", name, err)
	}
	// empty file
	if len(doc.Content) == 0 {
		return nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("i18n: %s: top level must be a mapping of languages", name)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		lang := normalizeLang(root.Content[i].Value)
		if lang == "" {
			continue
		}
		texts := c[lang]
		if texts == nil {
			texts = make(map[string]string)
		}
		collect("", root.Content[i+1], texts)
		if len(texts) > 0 {
			c[lang] = texts
		}
	}
	return nil
}

// collect flattens nested mappings into dot-separated keys. Non-string leaves are skipped.
func collect(prefix string, node *yaml.Node, out map[string]string) {
	switch node.Kind {
	case yaml.ScalarNode:
		if prefix != "" && node.Tag == "!!str" {
			out[prefix] = node.Value
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := strings.TrimSpace(node.Content[i].Value)
			if key == "" {
				continue
			}
			if prefix != "" {
				key = prefix + "." + key
			}
			collect(key, node.Content[i+1], out)
		}
	case yaml.AliasNode:
		if node.Alias != nil {
			collect(prefix, node.Alias, out)
		}
	}
}

func normalizeLang(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

func isYAML(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// Text resolves key through t and substitutes {{.Name}} placeholders from vars.
// fallback is used when t is nil or the key is missing.
func Text(t Translator, key, fallback string, vars map[string]string) string {
	text := fallback
	if t != nil {
		if resolved := t.T(key); strings.TrimSpace(resolved) != "" && resolved != key {
			text = resolved
		}
	}

	for name, value := range vars {
		text = strings.ReplaceAll(text, "{{."+name+"}}", value)
	}

	return text
}
