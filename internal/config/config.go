package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"jsjit/internal/stringlit"
)

// Config describes the target the backend compiles for: where jitframe
// fields live, the GC type-info table, and the shape of the emitted module.
type Config struct {
	Path     string `yaml:"-"`
	WordSize int    `yaml:"word_size"`
	Frame    Frame  `yaml:"frame"`
	GC       GC     `yaml:"gc"`
	Module   Module `yaml:"module"`
}

type Frame struct {
	// BaseOffset is the offset of the first scratch slot.
	BaseOffset   int            `yaml:"base_offset"`
	LengthOffset int            `yaml:"length_offset"`
	Fields       map[string]int `yaml:"fields"`
}

type GC struct {
	TypeInfoSize  int `yaml:"type_info_size"`
	TypeInfoGroup int `yaml:"type_info_group"`
	// RemoveTypePtr selects half-word type ids instead of full class
	// pointers in object headers.
	RemoveTypePtr bool `yaml:"remove_type_ptr"`
}

type Module struct {
	Name     string `yaml:"name"`
	Function string `yaml:"function"`
}

// RequiredFields must be present in Frame.Fields.
var RequiredFields = []string{"jf_descr", "jf_force_descr", "jf_guard_exc", "jf_gcmap"}

// Default returns the 32-bit jitframe layout.
func Default() *Config {
	return &Config{
		WordSize: 4,
		Frame: Frame{
			BaseOffset:   40,
			LengthOffset: 36,
			Fields: map[string]int{
				"jf_frame_info":        4,
				"jf_descr":             8,
				"jf_force_descr":       12,
				"jf_gcmap":             16,
				"jf_extra_stack_depth": 20,
				"jf_savedata":          24,
				"jf_guard_exc":         28,
				"jf_forward":           32,
			},
		},
		GC: GC{
			TypeInfoSize:  16,
			TypeInfoGroup: 0,
		},
		Module: Module{
			Name:     "jitted",
			Function: "trace",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// Parse decodes YAML over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.WordSize != 4 {
		return fmt.Errorf("word_size must be 4, got %d", c.WordSize)
	}
	if err := c.checkOffset("frame.base_offset", c.Frame.BaseOffset); err != nil {
		return err
	}
	if err := c.checkOffset("frame.length_offset", c.Frame.LengthOffset); err != nil {
		return err
	}
	names := make([]string, 0, len(c.Frame.Fields))
	for name := range c.Frame.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !stringlit.IsIdent(name) {
			return fmt.Errorf("frame.fields: invalid field name %q", name)
		}
		if err := c.checkOffset("frame.fields."+name, c.Frame.Fields[name]); err != nil {
			return err
		}
	}
	for _, name := range RequiredFields {
		if _, ok := c.Frame.Fields[name]; !ok {
			return fmt.Errorf("frame.fields: missing %s", name)
		}
	}
	if c.GC.TypeInfoSize <= 0 {
		return fmt.Errorf("gc.type_info_size must be positive, got %d", c.GC.TypeInfoSize)
	}
	if c.GC.TypeInfoGroup < 0 {
		return fmt.Errorf("gc.type_info_group must not be negative, got %d", c.GC.TypeInfoGroup)
	}
	if !stringlit.IsIdent(c.Module.Name) {
		return fmt.Errorf("module.name: invalid identifier %q", c.Module.Name)
	}
	if !stringlit.IsIdent(c.Module.Function) {
		return fmt.Errorf("module.function: invalid identifier %q", c.Module.Function)
	}
	return nil
}

func (c *Config) checkOffset(key string, off int) error {
	if off < 0 {
		return fmt.Errorf("%s must not be negative, got %d", key, off)
	}
	if off%c.WordSize != 0 {
		return fmt.Errorf("%s must be word aligned, got %d", key, off)
	}
	return nil
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
