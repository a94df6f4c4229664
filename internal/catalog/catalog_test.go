package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"esgreporter/internal/core"
)

func TestDefault(t *testing.T) {
	c := Default()
	if got := c.Categories(core.Emissions); len(got) != 5 || got[0] != "electricity" {
		t.Fatalf("unexpected emissions categories: %v", got)
	}
	if got := c.Categories(core.Water); len(got) != 4 {
		t.Fatalf("unexpected water categories: %v", got)
	}
	if c.Categories("energy") != nil {
		t.Fatal("unknown kind should have no categories")
	}
	if c.Industries[len(c.Industries)-1] != "Other" {
		t.Fatalf("industries should end with Other: %v", c.Industries)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Waste) != 5 {
		t.Fatalf("expected defaults, got %v", c.Waste)
	}
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	content := `
water:
  - cooling
  - " cooling "
  - ""
  - sanitation
industries: []
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Water) != 2 || c.Water[0] != "cooling" || c.Water[1] != "sanitation" {
		t.Fatalf("water override not applied: %v", c.Water)
	}
	if len(c.Emissions) != 5 {
		t.Fatalf("emissions should keep defaults: %v", c.Emissions)
	}
	if len(c.Industries) != 9 {
		t.Fatalf("empty override should keep default industries: %v", c.Industries)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("water: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
