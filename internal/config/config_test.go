package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jsjit.yaml")
	src := `
frame:
  base_offset: 64
  fields:
    jf_descr: 12
gc:
  type_info_size: 8
  type_info_group: 4096
  remove_type_ptr: true
module:
  name: loops
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Path != path {
		t.Fatalf("expected %q, got %q", path, c.Path)
	}
	if c.Frame.BaseOffset != 64 || c.Frame.LengthOffset != 36 {
		t.Fatalf("unexpected frame offsets: %+v", c.Frame)
	}
	if c.Frame.Fields["jf_descr"] != 12 || c.Frame.Fields["jf_gcmap"] != 16 {
		t.Fatalf("expected field overrides to merge with defaults, got %v", c.Frame.Fields)
	}
	if c.GC.TypeInfoSize != 8 || c.GC.TypeInfoGroup != 4096 || !c.GC.RemoveTypePtr {
		t.Fatalf("unexpected gc section: %+v", c.GC)
	}
	if c.Module.Name != "loops" || c.Module.Function != "trace" {
		t.Fatalf("unexpected module section: %+v", c.Module)
	}
}

func TestLoadEmptyPathAndEmptyFile(t *testing.T) {
	c, err := Load("")
	if err != nil || c.Frame.BaseOffset != 40 {
		t.Fatalf("expected defaults, got %+v (%v)", c, err)
	}
	c, err = Parse(nil)
	if err != nil || c.WordSize != 4 {
		t.Fatalf("expected defaults for empty input, got %+v (%v)", c, err)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"word_size", "word_size: 8\n", "word_size must be 4, got 8"},
		{"negative", "frame:\n  base_offset: -4\n", "frame.base_offset must not be negative, got -4"},
		{"unaligned", "frame:\n  fields:\n    jf_descr: 6\n", "frame.fields.jf_descr must be word aligned, got 6"},
		{"bad_field", "frame:\n  fields:\n    jf-x: 4\n", `frame.fields: invalid field name "jf-x"`},
		{"type_info", "gc:\n  type_info_size: 0\n", "gc.type_info_size must be positive, got 0"},
		{"module_name", "module:\n  name: 9lives\n", `module.name: invalid identifier "9lives"`},
		{"unknown_key", "frame:\n  base: 4\n", "field base not found"},
		{"syntax", "frame: [\n", "yaml:"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	c := Default()
	c.Module.Name = "roundtrip"
	b, err := c.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), "word_size: 4") || strings.Contains(string(b), "path") {
		t.Fatalf("unexpected yaml:\n%s", b)
	}
	back, err := Parse(b)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if back.Module.Name != "roundtrip" || back.Frame.Fields["jf_guard_exc"] != 28 {
		t.Fatalf("unexpected round trip: %+v", back)
	}
}
