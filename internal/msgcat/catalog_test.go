package msgcat

import (
    "os"
    "path/filepath"
    "strings"
    "testing"
)

func TestEmbeddedTemplatesRender(t *testing.T) {
    c, err := New("")
    if err != nil { t.Fatalf("New: %v", err) }

    out, err := c.Render("notify.host_turn", map[string]any{
        "LastMove":  "e4",
        "ExpiresAt": "2026-01-02 15:04",
    })
    if err != nil { t.Fatalf("Render: %v", err) }
    if !strings.Contains(out, "e4") { t.Fatalf("rendered text missing move: %q", out) }

    if _, err := c.Render("notify.host_turn", map[string]any{}); err == nil {
        t.Fatalf("expected error for missing template data")
    }
    if _, err := c.Render("no.such.key", nil); err == nil {
        t.Fatalf("expected error for unknown key")
    }
}

func TestOverrideDir(t *testing.T) {
    dir := t.TempDir()
    override := "notify:\n  host_turn: \"custom {{.LastMove}}\"\n"
    if err := os.WriteFile(filepath.Join(dir, "override.yaml"), []byte(override), 0o644); err != nil {
        t.Fatalf("write override: %v", err)
    }

    c, err := New(dir)
    if err != nil { t.Fatalf("New: %v", err) }
    out, err := c.Render("notify.host_turn", map[string]any{"LastMove": "d4"})
    if err != nil { t.Fatalf("Render: %v", err) }
    if out != "custom d4" { t.Fatalf("override not applied: %q", out) }

    // Untouched keys keep their embedded defaults.
    if _, err := c.Render("warn.oracle_pending", nil); err != nil {
        t.Fatalf("default key lost after override: %v", err)
    }
}
