// Package edit describes the modifications applied to a comment header and
// the plain-text format used to exchange comment lists with users.
package edit

import (
	"fmt"
	"strings"

	"github.com/jvatic/opustags/internal/opus"
)

// Selector picks comments for deletion: every comment with a given name, or
// only those with a given name and value.
type Selector struct {
	Name     string
	Value    string
	HasValue bool
}

// ParseSelector reads NAME or NAME=VALUE.
func ParseSelector(s string) Selector {
	name, value, ok := opus.SplitComment(s)
	return Selector{Name: name, Value: value, HasValue: ok}
}

// Match reports whether comment is selected. Names compare without regard to
// ASCII case, values byte for byte.
func (s Selector) Match(comment string) bool {
	name, value, ok := opus.SplitComment(comment)
	if !ok || !strings.EqualFold(name, s.Name) {
		return false
	}
	return !s.HasValue || value == s.Value
}

func (s Selector) String() string {
	if s.HasValue {
		return s.Name + "=" + s.Value
	}
	return s.Name
}

// Plan is the set of changes requested for a comment header. They are applied
// in a fixed order: vendor, then either clearing or the deletions in order,
// then the additions in order, then the cover.
type Plan struct {
	Vendor    *string
	DeleteAll bool
	Deletions []Selector
	Additions []string
	Cover     []byte
}

// Add queues NAME=VALUE for addition.
func (p *Plan) Add(comment string) {
	p.Additions = append(p.Additions, comment)
}

// Remove queues a deletion.
func (p *Plan) Remove(sel Selector) {
	p.Deletions = append(p.Deletions, sel)
}

// Set replaces every comment named like comment with comment itself.
func (p *Plan) Set(comment string) error {
	name, _, ok := opus.SplitComment(comment)
	if !ok {
		return fmt.Errorf("%q is not of the form NAME=VALUE", comment)
	}
	p.Remove(Selector{Name: name})
	p.Add(comment)
	return nil
}

// Empty reports whether applying p would leave any tags unchanged.
func (p *Plan) Empty() bool {
	return p.Vendor == nil && !p.DeleteAll && len(p.Deletions) == 0 && len(p.Additions) == 0 && p.Cover == nil
}

// Apply modifies t according to p.
func (p *Plan) Apply(t *opus.Tags) {
	if p.Vendor != nil {
		t.Vendor = *p.Vendor
	}
	if p.DeleteAll {
		t.Comments = t.Comments[:0]
	} else {
		for _, sel := range p.Deletions {
			t.DeleteFunc(sel.Match)
		}
	}
	t.Comments = append(t.Comments, p.Additions...)
	if p.Cover != nil {
		t.Delete(opus.PictureField)
		t.Comments = append(t.Comments, opus.CoverComment(opus.MakeCover(p.Cover)))
	}
}
