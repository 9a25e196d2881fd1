package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func mustDefault(t *testing.T) *Registry {
	t.Helper()
	reg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return reg
}

func TestEmbeddedRegistry(t *testing.T) {
	reg := mustDefault(t)

	ids := reg.IDs()
	want := []string{"Design 1", "Design 2", "Design 3", "Design 4", "Design 5", "Design 6"}
	if len(ids) != len(want) {
		t.Fatalf("ids: want=%v got=%v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids[%d]: want=%s got=%s", i, want[i], ids[i])
		}
	}

	counts := map[string]int{"Design 1": 33, "Design 2": 18, "Design 3": 18, "Design 4": 27, "Design 5": 0, "Design 6": 0}
	for id, n := range counts {
		defaults, err := reg.DefaultsFor(id)
		if err != nil {
			t.Fatalf("DefaultsFor(%s): %v", id, err)
		}
		if len(defaults) != n {
			t.Fatalf("DefaultsFor(%s): want=%d keys got=%d", id, n, len(defaults))
		}
	}
}

func TestDesignTwoDefaults(t *testing.T) {
	reg := mustDefault(t)
	defaults, err := reg.DefaultsFor("Design 2")
	if err != nil {
		t.Fatalf("DefaultsFor: %v", err)
	}
	for key, value := range defaults {
		if value != "#B3998E" {
			t.Fatalf("%s: want=#B3998E got=%s", key, value)
		}
	}
}

func TestListGroupsKeepsDeclarationOrder(t *testing.T) {
	reg := mustDefault(t)
	groups, err := reg.ListGroups("Design 1")
	if err != nil {
		t.Fatalf("ListGroups: %v", err)
	}
	labels := []string{"Main Colors", "Characters", "Letters / Accents", "Gradient 1"}
	for i, l := range labels {
		if groups[i].Label != l {
			t.Fatalf("group[%d]: want=%q got=%q", i, l, groups[i].Label)
		}
	}
	if groups[0].Keys[0] != "crossLogoColor" {
		t.Fatalf("first key: want=crossLogoColor got=%s", groups[0].Keys[0])
	}

	// callers get a copy
	groups[0].Keys[0] = "mutated"
	again, _ := reg.ListGroups("Design 1")
	if again[0].Keys[0] != "crossLogoColor" {
		t.Fatalf("registry was mutated through ListGroups")
	}
}

func TestEmptyDesignIsValid(t *testing.T) {
	reg := mustDefault(t)
	groups, err := reg.ListGroups("Design 5")
	if err != nil {
		t.Fatalf("ListGroups: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("want no groups, got %d", len(groups))
	}
}

func TestLookupUnknown(t *testing.T) {
	reg := mustDefault(t)
	_, err := reg.Lookup("Design 99")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got=%T (%v)", err, err)
	}
	if nf.ID != "Design 99" {
		t.Fatalf("id: want=Design 99 got=%s", nf.ID)
	}
	if _, err := reg.DefaultsFor("nope"); !errors.As(err, &nf) {
		t.Fatalf("DefaultsFor: expected NotFoundError, got=%v", err)
	}
}

func TestMissingDefaultFallsBackToNeutral(t *testing.T) {
	reg, err := Parse([]byte(`{"designs":[{"id":"X","artwork":"design6","groups":[{"label":"G","keys":["a","b"]}],"defaults":{"a":"#f00"}}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defaults, _ := reg.DefaultsFor("X")
	if defaults["a"] != "#FF0000" {
		t.Fatalf("a: want=#FF0000 got=%s", defaults["a"])
	}
	if defaults["b"] != "#CCCCCC" {
		t.Fatalf("b: want neutral got=%s", defaults["b"])
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":          `{"designs":[]}`,
		"no id":          `{"designs":[{"id":"","artwork":"a"}]}`,
		"duplicate id":   `{"designs":[{"id":"A","artwork":"a"},{"id":"A","artwork":"a"}]}`,
		"no artwork":     `{"designs":[{"id":"A"}]}`,
		"duplicate key":  `{"designs":[{"id":"A","artwork":"a","groups":[{"label":"G","keys":["k","k"]}]}]}`,
		"undeclared key": `{"designs":[{"id":"A","artwork":"a","defaults":{"k":"#fff"}}]}`,
		"bad color":      `{"designs":[{"id":"A","artwork":"a","groups":[{"label":"G","keys":["k"]}],"defaults":{"k":"blue"}}]}`,
		"bad json":       `{`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(raw)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "designs.json")
	raw := `{"designs":[{"id":"Only","artwork":"design6"}]}`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	reg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ids := reg.IDs(); len(ids) != 1 || ids[0] != "Only" {
		t.Fatalf("ids: got=%v", ids)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	reg := mustDefault(t)
	def, err := reg.Lookup("Design 2")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	def.Name = "changed"
	def.Groups[0].Keys[0] = "changed"
	def.Groups = nil
	for k := range def.Defaults {
		def.Defaults[k] = "#000000"
	}

	again, _ := reg.Lookup("Design 2")
	if again.Name == "changed" || len(again.Groups) == 0 || again.Groups[0].Keys[0] == "changed" {
		t.Fatalf("registry definition was mutated: %+v", again)
	}
	defaults, _ := reg.DefaultsFor("Design 2")
	for k, v := range defaults {
		if v == "#000000" {
			t.Fatalf("default %s was mutated", k)
		}
	}
}
