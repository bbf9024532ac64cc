package schema

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// DiscriminantField is the field selecting the concrete variant of an
// abstract struct family.
const DiscriminantField = "Kind"

// Registry holds the resolved type definitions of one schema description.
// It never changes after Load.
type Registry struct {
	root  string
	types map[string]*TypeDef
	order []string
}

type schemaFieldYAML struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Optional  bool   `yaml:"optional"`
	Array     bool   `yaml:"array"`
	Reference bool   `yaml:"reference"`
}

type schemaTypeYAML struct {
	Name     string            `yaml:"name"`
	Enum     []string          `yaml:"enum"`
	Abstract bool              `yaml:"abstract"`
	Kind     string            `yaml:"kind"`
	Inherits string            `yaml:"inherits"`
	Key      []string          `yaml:"key"`
	Fields   []schemaFieldYAML `yaml:"fields"`
}

type schemaYAML struct {
	Root  string           `yaml:"root"`
	Types []schemaTypeYAML `yaml:"types"`
}

// Load parses a schema description and resolves it into a Registry.
func Load(data []byte) (*Registry, error) {
	var sf schemaYAML
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	r := &Registry{root: sf.Root, types: map[string]*TypeDef{}}
	for _, st := range sf.Types {
		if st.Name == "" {
			return nil, fmt.Errorf("%w: type with no name", ErrSchema)
		}
		if _, dup := r.types[st.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate type %q", ErrSchema, st.Name)
		}
		td := &TypeDef{Name: st.Name}
		if len(st.Enum) > 0 {
			td.Kind = EnumKind
			td.Members = st.Enum
		} else {
			td.Kind = StructKind
			td.Abstract = st.Abstract
			td.KindEnum = st.Kind
			td.Inherits = st.Inherits
			td.KeyFields = st.Key
		}
		r.types[st.Name] = td
		r.order = append(r.order, st.Name)
	}

	// second pass: resolve each type's own field descriptors now that all
	// names are known
	own := map[string][]FieldDef{}
	for _, st := range sf.Types {
		td := r.types[st.Name]
		if td.Kind == EnumKind {
			continue
		}
		for _, f := range st.Fields {
			fd, err := r.resolveField(st.Name, f)
			if err != nil {
				return nil, err
			}
			own[st.Name] = append(own[st.Name], *fd)
		}
	}

	// third pass: merge inherited fields ahead of each variant's own, so
	// a variant may be declared before its base
	for _, name := range r.order {
		td := r.types[name]
		if td.Kind == EnumKind {
			continue
		}
		if td.Inherits == "" {
			td.Fields = own[name]
			continue
		}
		base, err := r.TypeDef(td.Inherits)
		if err != nil {
			return nil, err
		}
		if !base.Abstract {
			return nil, fmt.Errorf("%w: %s inherits non-abstract %s",
				ErrSchema, td.Name, base.Name)
		}
		base.Variants = append(base.Variants, td.Name)
		td.Fields = append(append([]FieldDef{}, own[base.Name]...), own[name]...)
		if len(td.KeyFields) == 0 {
			td.KeyFields = base.KeyFields
		}
	}

	// abstract bases must carry a discriminant, and variant names must be
	// members of the base's discriminant enum
	for _, name := range r.order {
		td := r.types[name]
		if !td.Abstract {
			continue
		}
		if err := r.checkDiscriminant(td); err != nil {
			return nil, err
		}
		ke := r.types[td.KindEnum]
		for _, v := range td.Variants {
			if !ke.HasMember(v) {
				return nil, fmt.Errorf("%w: variant %s of %s is not a member of %s",
					ErrSchema, v, td.Name, td.KindEnum)
			}
		}
	}

	if r.root != "" {
		if _, err := r.TypeDef(r.root); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustLoad is Load for schemas known to be valid, typically embedded ones.
func MustLoad(data []byte) *Registry {
	r, err := Load(data)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) resolveField(owner string, f schemaFieldYAML) (*FieldDef, error) {
	if f.Name == "" {
		return nil, fmt.Errorf("%w: field of %s with no name", ErrSchema, owner)
	}
	fd := &FieldDef{
		Name:     f.Name,
		Type:     f.Type,
		Optional: f.Optional,
		Array:    f.Array,
	}
	if f.Reference {
		if _, err := r.TypeDef(f.Type); err != nil {
			return nil, err
		}
		fd.Kind = ReferenceKind
		return fd, nil
	}
	if isBuiltin(f.Type) {
		fd.Kind = ScalarKind
		return fd, nil
	}
	td, err := r.TypeDef(f.Type)
	if err != nil {
		return nil, fmt.Errorf("field %s.%s: %w", owner, f.Name, err)
	}
	fd.Kind = td.Kind
	fd.Abstract = td.Abstract
	return fd, nil
}

func (r *Registry) checkDiscriminant(td *TypeDef) error {
	if td.KindEnum == "" {
		return fmt.Errorf("%w: abstract %s declares no kind enum", ErrSchema, td.Name)
	}
	ke, err := r.TypeDef(td.KindEnum)
	if err != nil {
		return err
	}
	if ke.Kind != EnumKind {
		return fmt.Errorf("%w: kind type %s of %s is not an enum",
			ErrSchema, td.KindEnum, td.Name)
	}
	df := td.Field(DiscriminantField)
	if df == nil || df.Type != td.KindEnum {
		return fmt.Errorf("%w: abstract %s must declare field %s of type %s",
			ErrSchema, td.Name, DiscriminantField, td.KindEnum)
	}
	return nil
}

func isBuiltin(name string) bool {
	switch name {
	case "string", "int", "bool", "float":
		return true
	}
	return false
}

// Root returns the schema's declared root type name.
func (r *Registry) Root() string {
	return r.root
}

// TypeDef looks up a type by name.
func (r *Registry) TypeDef(name string) (*TypeDef, error) {
	td := r.types[name]
	if td == nil {
		return nil, fmt.Errorf("%w: unknown type %q", ErrSchema, name)
	}
	return td, nil
}

// Field looks up a declared field of a struct type.
func (r *Registry) Field(typeName, field string) (*FieldDef, error) {
	td, err := r.TypeDef(typeName)
	if err != nil {
		return nil, err
	}
	fd := td.Field(field)
	if fd == nil {
		return nil, fmt.Errorf("%w: type %s has no field %q", ErrSchema, typeName, field)
	}
	return fd, nil
}

// Variant resolves a concrete variant of an abstract base by its
// discriminant value.
func (r *Registry) Variant(baseName, kindValue string) (*TypeDef, error) {
	base, err := r.TypeDef(baseName)
	if err != nil {
		return nil, err
	}
	if !base.Abstract {
		if base.Name == kindValue {
			return base, nil
		}
		return nil, fmt.Errorf("%w: %s is not abstract", ErrSchema, baseName)
	}
	for _, v := range base.Variants {
		if v == kindValue {
			return r.types[v], nil
		}
	}
	return nil, fmt.Errorf("%w: %s has no variant for kind %q", ErrSchema, baseName, kindValue)
}

// KeyFields returns the key fields making an element type keyed, or nil.
func (r *Registry) KeyFields(typeName string) []string {
	td := r.types[typeName]
	if td == nil {
		return nil
	}
	return td.KeyFields
}
