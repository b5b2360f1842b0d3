// Package readgroup parses and validates read-group specifications of the
// form "-ID=1;-LB=lib;-PL=ILLUMINA;-PU=barcode;-SM=sample" and flattens them
// into arguments for Picard/GATK AddOrReplaceReadGroups.
package readgroup

import (
	"strings"

	"github.com/grailbio/base/errors"
)

// AllowedTags lists the tag names AddOrReplaceReadGroups accepts.
var AllowedTags = []string{
	"-LB", "-PL", "-PU", "-SM",
	"-CN", "-DS", "-DT", "-FO", "-ID", "-KS", "-PG", "-PI", "-PM", "-SO",
}

// MandatoryTags must all be present in a specification.
var MandatoryTags = []string{"-LB", "-PL", "-PU", "-SM"}

var (
	// ErrImproperlyFormatted is returned when a tag is not in AllowedTags or an
	// element is not of the form -TAG=value.
	ErrImproperlyFormatted = errors.E(errors.Invalid, "One or more read_group argument(s) improperly formatted.")
	// ErrDuplicateTag is returned when a tag occurs more than once.
	ErrDuplicateTag = errors.E(errors.Invalid, "You have duplicate tags in read_group argument.")
	// ErrMissingMandatory is returned when one of MandatoryTags is absent.
	ErrMissingMandatory = errors.E(errors.Invalid, "Missing mandatory read_group argument(s) (-PL, -LB, -PU and -SM are mandatory).")
)

const (
	elemSep  = ";"
	valueSep = "="
)

// Pair is one "-TAG=value" element.
type Pair struct {
	Tag   string
	Value string
}

// Spec is a validated read-group specification. Pairs keep input order.
type Spec struct {
	Pairs []Pair
}

func isAllowed(tag string) bool {
	for _, t := range AllowedTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Split breaks s into pairs without validating tag names. An element with no
// "=" yields a Pair with an empty Value and ok=false.
func Split(s string) (pairs []Pair, ok bool) {
	ok = true
	for _, elem := range strings.Split(s, elemSep) {
		i := strings.Index(elem, valueSep)
		if i < 0 {
			pairs = append(pairs, Pair{Tag: elem})
			ok = false
			continue
		}
		pairs = append(pairs, Pair{Tag: elem[:i], Value: elem[i+1:]})
	}
	return pairs, ok
}

// Validate checks pairs against the allow-set, for duplicates and for the
// mandatory tags, in that order, and returns the first violation.
func Validate(pairs []Pair) error {
	for _, p := range pairs {
		if !isAllowed(p.Tag) {
			return ErrImproperlyFormatted
		}
	}
	seen := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		if seen[p.Tag] {
			return ErrDuplicateTag
		}
		seen[p.Tag] = true
	}
	for _, t := range MandatoryTags {
		if !seen[t] {
			return ErrMissingMandatory
		}
	}
	return nil
}

// Parse splits and validates s.
func Parse(s string) (Spec, error) {
	pairs, ok := Split(s)
	if !ok {
		return Spec{}, ErrImproperlyFormatted
	}
	if err := Validate(pairs); err != nil {
		return Spec{}, err
	}
	return Spec{Pairs: pairs}, nil
}

// Args flattens the spec to "-TAG value" arguments in input order.
func (s Spec) Args() []string {
	args := make([]string, 0, 2*len(s.Pairs))
	for _, p := range s.Pairs {
		args = append(args, p.Tag, p.Value)
	}
	return args
}

// Value returns the value of tag, or "" if the tag is absent.
func (s Spec) Value(tag string) string {
	for _, p := range s.Pairs {
		if p.Tag == tag {
			return p.Value
		}
	}
	return ""
}

// String reassembles the spec in its textual form.
func (s Spec) String() string {
	elems := make([]string, len(s.Pairs))
	for i, p := range s.Pairs {
		elems[i] = p.Tag + valueSep + p.Value
	}
	return strings.Join(elems, elemSep)
}
