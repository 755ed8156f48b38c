package msgcat

import (
    "embed"
    "fmt"
    "io/fs"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "sync"
    "text/template"

    yaml "gopkg.in/yaml.v3"
)

//go:embed messages.en.yaml
var defaultFiles embed.FS

// Catalog holds the user-facing text templates (notification bodies, warning
// surfaces) loaded from the embedded defaults plus an optional override
// directory. Values are rendered with text/template; missing keys error.
type Catalog struct {
    mu   sync.RWMutex
    data map[string]string // flattened dot-keys -> template text
}

// New loads the embedded default messages, then applies overrides from dir
// when one is configured.
func New(overrideDir string) (*Catalog, error) {
    c := &Catalog{data: make(map[string]string)}
    raw, err := fs.ReadFile(defaultFiles, "messages.en.yaml")
    if err != nil { return nil, fmt.Errorf("read embedded messages: %w", err) }
    if err := c.applyYAML(raw); err != nil { return nil, err }
    if strings.TrimSpace(overrideDir) != "" {
        if err := c.applyDir(overrideDir); err != nil { return nil, err }
    }
    return c, nil
}

func (c *Catalog) applyDir(dir string) error {
    entries, err := os.ReadDir(dir)
    if err != nil { return fmt.Errorf("read override dir: %w", err) }
    files := make([]string, 0, len(entries))
    for _, e := range entries {
        if e.IsDir() { continue }
        ext := strings.ToLower(filepath.Ext(e.Name()))
        if ext == ".yaml" || ext == ".yml" { files = append(files, e.Name()) }
    }
    sort.Strings(files)
    for _, name := range files {
        b, err := os.ReadFile(filepath.Join(dir, name))
        if err != nil { return fmt.Errorf("read %s: %w", name, err) }
        if err := c.applyYAML(b); err != nil { return fmt.Errorf("parse %s: %w", name, err) }
    }
    return nil
}

func (c *Catalog) applyYAML(b []byte) error {
    var m map[string]any
    if err := yaml.Unmarshal(b, &m); err != nil { return err }
    flat := make(map[string]string)
    if err := flatten(m, "", flat); err != nil { return err }
    c.mu.Lock()
    for k, v := range flat { c.data[k] = v }
    c.mu.Unlock()
    return nil
}

func flatten(src any, prefix string, out map[string]string) error {
    switch v := src.(type) {
    case map[string]any:
        for k, vv := range v {
            key := k
            if prefix != "" { key = prefix + "." + k }
            if err := flatten(vv, key, out); err != nil { return err }
        }
        return nil
    case string:
        if prefix == "" { return fmt.Errorf("string value without key") }
        out[prefix] = v
        return nil
    case nil:
        return nil
    default:
        return fmt.Errorf("unsupported value at %s: %T", prefix, v)
    }
}

// Render executes the template stored under key with data.
func (c *Catalog) Render(key string, data any) (string, error) {
    c.mu.RLock()
    tpl, ok := c.data[strings.TrimSpace(key)]
    c.mu.RUnlock()
    if !ok || strings.TrimSpace(tpl) == "" {
        return "", fmt.Errorf("template not found: %s", key)
    }
    t, err := template.New(key).Option("missingkey=error").Parse(tpl)
    if err != nil { return "", err }
    var b strings.Builder
    if err := t.Execute(&b, data); err != nil { return "", err }
    return b.String(), nil
}
