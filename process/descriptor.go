package process

import (
	"fmt"
	"regexp"

	"github.com/grailbio/base/errors"
)

// SchedulingClass tells the host how latency sensitive a process is.
type SchedulingClass string

const (
	// Interactive processes are scheduled ahead of batch ones.
	Interactive SchedulingClass = "interactive"
	// Batch processes may wait for resources.
	Batch SchedulingClass = "batch"
)

// Field types, in the host's "kind:subtype:" notation.
const (
	TypeString = "basic:string:"
	TypeFile   = "basic:file:"
	TypeInt    = "basic:integer:"
)

// DataType returns the field type of a reference to a data object of the
// given type, e.g. DataType("alignment:bam") == "data:alignment:bam:".
func DataType(t string) string { return "data:" + t + ":" }

// ListOf returns the field type of a list of fieldType.
func ListOf(fieldType string) string { return "list:" + fieldType }

// Choice is one permitted value of a Field.
type Choice struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
}

// Field declares one input or output of a process.
type Field struct {
	Name        string   `yaml:"name" json:"name"`
	Type        string   `yaml:"type" json:"type"`
	Label       string   `yaml:"label" json:"label"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool     `yaml:"required" json:"required"`
	Default     string   `yaml:"default,omitempty" json:"default,omitempty"`
	Choices     []Choice `yaml:"choices,omitempty" json:"choices,omitempty"`
}

// CheckChoice returns an errors.Invalid error if the field has choices and
// v is not one of them.
func (f Field) CheckChoice(v string) error {
	if len(f.Choices) == 0 {
		return nil
	}
	for _, c := range f.Choices {
		if c.Value == v {
			return nil
		}
	}
	return errors.E(errors.Invalid, fmt.Sprintf("%s: %q is not one of %v", f.Name, v, f.choiceValues()))
}

func (f Field) choiceValues() []string {
	vals := make([]string, len(f.Choices))
	for i, c := range f.Choices {
		vals[i] = c.Value
	}
	return vals
}

// Entity names the entity type a process's output data is attached to.
type Entity struct {
	Type string `yaml:"type" json:"type"`
}

// Resources are the compute resources a process asks for.
type Resources struct {
	Cores  int `yaml:"cores,omitempty" json:"cores,omitempty"`
	Memory int `yaml:"memory,omitempty" json:"memory,omitempty"`
}

// Requirements describe how the host should execute a process.
type Requirements struct {
	ExpressionEngine string    `yaml:"expression-engine,omitempty" json:"expression-engine,omitempty"`
	DockerImage      string    `yaml:"docker-image,omitempty" json:"docker-image,omitempty"`
	Resources        Resources `yaml:"resources,omitempty" json:"resources,omitempty"`
}

// Descriptor is the static description of a process.
type Descriptor struct {
	Slug            string          `yaml:"slug" json:"slug"`
	Name            string          `yaml:"name" json:"name"`
	Type            string          `yaml:"process_type" json:"process_type"`
	Version         string          `yaml:"version" json:"version"`
	Category        string          `yaml:"category,omitempty" json:"category,omitempty"`
	Description     string          `yaml:"description,omitempty" json:"description,omitempty"`
	SchedulingClass SchedulingClass `yaml:"scheduling_class" json:"scheduling_class"`
	Entity          Entity          `yaml:"entity" json:"entity"`
	Requirements    Requirements    `yaml:"requirements" json:"requirements"`
	// DataName is the template the host renders to name the output data.
	DataName string  `yaml:"data_name,omitempty" json:"data_name,omitempty"`
	Input    []Field `yaml:"input" json:"input"`
	Output   []Field `yaml:"output" json:"output"`
}

var versionRE = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+$`)

// Validate checks the descriptor for internal consistency.
func (d *Descriptor) Validate() error {
	switch {
	case d.Slug == "":
		return errors.E(errors.Invalid, "process: empty slug")
	case d.Name == "":
		return errors.E(errors.Invalid, d.Slug, "process: empty name")
	case d.Type == "":
		return errors.E(errors.Invalid, d.Slug, "process: empty process type")
	case !versionRE.MatchString(d.Version):
		return errors.E(errors.Invalid, d.Slug, fmt.Sprintf("process: version %q is not of the form x.y.z", d.Version))
	}
	for _, fields := range [][]Field{d.Input, d.Output} {
		seen := map[string]bool{}
		for _, f := range fields {
			if f.Name == "" || f.Type == "" {
				return errors.E(errors.Invalid, d.Slug, fmt.Sprintf("process: field %+v lacks a name or type", f))
			}
			if seen[f.Name] {
				return errors.E(errors.Invalid, d.Slug, "process: duplicate field "+f.Name)
			}
			seen[f.Name] = true
			if f.Default != "" {
				if err := f.CheckChoice(f.Default); err != nil {
					return errors.E(err, d.Slug, "process: bad default")
				}
			}
		}
	}
	return nil
}

func lookup(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// InputField returns the input field with the given name.
func (d *Descriptor) InputField(name string) (Field, bool) { return lookup(d.Input, name) }

// OutputField returns the output field with the given name.
func (d *Descriptor) OutputField(name string) (Field, bool) { return lookup(d.Output, name) }
