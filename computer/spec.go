package computer

import (
	"errors"
	"fmt"

	"deskctl/aitools"
)

// actionField is the discriminant property name
const actionField = "action"

// field declares one payload property consumed by an action decoder
type field struct {
	name     string
	typ      aitools.PropertyType
	desc     string
	enum     []string
	required bool
}

// actionSpec binds an action's declared fields to its decoder. The schema
// and Decode are both derived from actionSpecs, so they cannot drift apart.
type actionSpec struct {
	kind   ActionKind
	fields []field
	decode func(r fieldReader) (Action, error)
}

var actionSpecs = []actionSpec{
	{
		kind: ActionScreenshot,
		decode: func(fieldReader) (Action, error) {
			return Screenshot{}, nil
		},
	},
	{
		kind: ActionMouseMove,
		fields: []field{
			{name: "x", typ: aitools.TypeInteger, desc: "X coordinate for mouse operations", required: true},
			{name: "y", typ: aitools.TypeInteger, desc: "Y coordinate for mouse operations", required: true},
		},
		decode: func(r fieldReader) (Action, error) {
			x, err := r.Int("x")
			if err != nil {
				return nil, err
			}
			y, err := r.Int("y")
			if err != nil {
				return nil, err
			}
			return MouseMove{X: x, Y: y}, nil
		},
	},
	{
		kind: ActionMouseClick,
		fields: []field{
			{name: "button", typ: aitools.TypeString, desc: "Mouse button to click", enum: buttonNames(), required: true},
			{name: "double", typ: aitools.TypeBoolean, desc: "Whether to double-click. Defaults to false"},
		},
		decode: func(r fieldReader) (Action, error) {
			button, err := r.String("button")
			if err != nil {
				return nil, err
			}
			double, err := r.OptionalBool("double", false)
			if err != nil {
				return nil, err
			}
			return MouseClick{Button: button, Double: double}, nil
		},
	},
	{
		kind: ActionKeyPress,
		fields: []field{
			{name: "key", typ: aitools.TypeString, desc: "Key to press (e.g., 'enter', 'escape', 'tab')", required: true},
		},
		decode: func(r fieldReader) (Action, error) {
			key, err := r.String("key")
			if err != nil {
				return nil, err
			}
			return KeyPress{Key: key}, nil
		},
	},
	{
		kind: ActionTypeText,
		fields: []field{
			{name: "text", typ: aitools.TypeString, desc: "Text to type", required: true},
		},
		decode: func(r fieldReader) (Action, error) {
			text, err := r.String("text")
			if err != nil {
				return nil, err
			}
			return TypeText{Text: text}, nil
		},
	},
	{
		kind: ActionScroll,
		fields: []field{
			{name: "direction", typ: aitools.TypeString, desc: "Scroll direction", enum: []string{"up", "down"}, required: true},
			{name: "amount", typ: aitools.TypeInteger, desc: "Scroll amount", required: true},
		},
		decode: func(r fieldReader) (Action, error) {
			direction, err := r.String("direction")
			if err != nil {
				return nil, err
			}
			amount, err := r.Int("amount")
			if err != nil {
				return nil, err
			}
			return Scroll{Direction: direction, Amount: amount}, nil
		},
	},
}

var specsByKind = func() map[ActionKind]*actionSpec {
	m := make(map[ActionKind]*actionSpec, len(actionSpecs))
	for i := range actionSpecs {
		m[actionSpecs[i].kind] = &actionSpecs[i]
	}
	return m
}()

// Kinds returns every known action in declaration order
func Kinds() []ActionKind {
	kinds := make([]ActionKind, len(actionSpecs))
	for i, s := range actionSpecs {
		kinds[i] = s.kind
	}
	return kinds
}

func buttonNames() []string {
	names := make([]string, len(Buttons))
	for i, b := range Buttons {
		names[i] = string(b)
	}
	return names
}

// fieldReader restricts a decoder to the fields its spec declares. Reading an
// undeclared field is a programming error and panics.
type fieldReader struct {
	p    aitools.Payload
	spec *actionSpec
}

func (r fieldReader) check(name string, typ aitools.PropertyType) {
	for _, f := range r.spec.fields {
		if f.name == name {
			if f.typ != typ {
				panic(fmt.Sprintf("computer: %s reads %q as %s but declares %s", r.spec.kind, name, typ, f.typ))
			}
			return
		}
	}
	panic(fmt.Sprintf("computer: %s reads undeclared field %q", r.spec.kind, name))
}

func (r fieldReader) String(name string) (string, error) {
	r.check(name, aitools.TypeString)
	return r.p.String(name)
}

func (r fieldReader) Int(name string) (int, error) {
	r.check(name, aitools.TypeInteger)
	return r.p.Int(name)
}

func (r fieldReader) OptionalBool(name string, def bool) (bool, error) {
	r.check(name, aitools.TypeBoolean)
	return r.p.OptionalBool(name, def)
}

// Decode maps an untyped payload to exactly one Action. It either returns a
// fully populated action or a *aitools.DecodeError, never both.
func Decode(p aitools.Payload) (Action, error) {
	raw, ok := p[actionField]
	if !ok || raw == nil {
		return nil, &aitools.DecodeError{Kind: aitools.UnknownAction}
	}
	name, ok := raw.(string)
	if !ok {
		return nil, &aitools.DecodeError{
			Kind:     aitools.TypeMismatch,
			Field:    actionField,
			Expected: aitools.TypeString,
			Actual:   aitools.JSONTypeName(raw),
		}
	}
	spec, ok := specsByKind[ActionKind(name)]
	if !ok {
		return nil, &aitools.DecodeError{Kind: aitools.UnknownAction, Action: name, Field: actionField}
	}

	for _, f := range spec.fields {
		if f.required && !p.Has(f.name) {
			return nil, &aitools.DecodeError{Kind: aitools.MissingField, Action: name, Field: f.name}
		}
	}

	action, err := spec.decode(fieldReader{p: p, spec: spec})
	if err != nil {
		var de *aitools.DecodeError
		if errors.As(err, &de) {
			de.Action = name
		}
		return nil, err
	}
	return action, nil
}

// Schema builds the parameter schema from the action specs
func Schema() aitools.Schema {
	props := aitools.PropertyMap{
		actionField: {
			Type:        aitools.TypeString,
			Description: "The action to perform",
			Enum:        kindNames(),
		},
	}
	for _, spec := range actionSpecs {
		for _, f := range spec.fields {
			prop := aitools.Property{Type: f.typ, Description: f.desc, Enum: f.enum}
			if existing, ok := props[f.name]; ok {
				if existing.Type != prop.Type {
					panic(fmt.Sprintf("computer: field %q declared as both %s and %s", f.name, existing.Type, prop.Type))
				}
				continue
			}
			props[f.name] = prop
		}
	}
	return aitools.Schema{
		Type:       aitools.TypeObject,
		Properties: props,
		Required:   []string{actionField},
	}
}

func kindNames() []string {
	kinds := Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}
