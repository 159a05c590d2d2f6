package domain

import (
	"math"
	"strings"
)

// LineItem is one requested product or service in an RFQ.
type LineItem struct {
	// Description is the free-text name of the requested item.
	Description string `json:"description"`

	// Quantity is the requested amount. Nil means the source gave no usable number.
	Quantity *float64 `json:"quantity,omitempty"`

	// Unit is the unit of measure. Empty means unspecified, never guessed.
	Unit string `json:"unit,omitempty"`

	// Specifications holds extra technical detail for the item.
	Specifications string `json:"specifications,omitempty"`
}

// HasDescription returns true if the item carries a non-blank description.
func (i LineItem) HasDescription() bool {
	return strings.TrimSpace(i.Description) != ""
}

// HasQuantity returns true if the quantity is set.
func (i LineItem) HasQuantity() bool {
	return i.Quantity != nil
}

// HasValidQuantity returns true if the quantity is set, positive and finite.
func (i LineItem) HasValidQuantity() bool {
	return i.Quantity != nil && ValidQuantity(*i.Quantity)
}

// ValidQuantity returns true for positive, finite numbers.
func ValidQuantity(q float64) bool {
	return q > 0 && !math.IsInf(q, 0) && !math.IsNaN(q)
}

// Qty returns a pointer to q, or nil when q is not a valid quantity.
func Qty(q float64) *float64 {
	if !ValidQuantity(q) {
		return nil
	}
	return &q
}

// RequirementSet is the structured output of requirement analysis.
type RequirementSet struct {
	// CustomerName is the requesting organisation, if stated.
	CustomerName string `json:"customer_name,omitempty"`

	// ProjectName is the project or tender reference, if stated.
	ProjectName string `json:"project_name,omitempty"`

	// Deadline is the submission deadline as written in the document.
	Deadline string `json:"deadline,omitempty"`

	// Items is always non-nil, possibly empty.
	Items []LineItem `json:"items"`

	// RejectedQuantities counts items whose source quantity was present but
	// unusable (negative, zero, out of range or not a number) and was unset.
	RejectedQuantities int `json:"-"`
}

// NewRequirementSet returns an empty set with a non-nil Items slice.
func NewRequirementSet() *RequirementSet {
	return &RequirementSet{Items: []LineItem{}}
}

// IsEmpty returns true when the set has no items.
func (s *RequirementSet) IsEmpty() bool {
	return s == nil || len(s.Items) == 0
}

// Clean enforces the set invariants in place:
// Items is non-nil, invalid quantities are unset, and items with neither
// a usable description nor a quantity are dropped.
func (s *RequirementSet) Clean() {
	if s.Items == nil {
		s.Items = []LineItem{}
		return
	}

	kept := s.Items[:0]
	for _, item := range s.Items {
		item.Description = strings.TrimSpace(item.Description)
		item.Unit = strings.TrimSpace(item.Unit)
		item.Specifications = strings.TrimSpace(item.Specifications)
		if item.Quantity != nil && !ValidQuantity(*item.Quantity) {
			item.Quantity = nil
		}
		if !item.HasDescription() && !item.HasQuantity() {
			continue
		}
		kept = append(kept, item)
	}
	s.Items = kept
}

// Clone returns a deep copy of the set.
func (s *RequirementSet) Clone() *RequirementSet {
	if s == nil {
		return NewRequirementSet()
	}
	out := *s
	out.Items = make([]LineItem, len(s.Items))
	for i, item := range s.Items {
		if item.Quantity != nil {
			q := *item.Quantity
			item.Quantity = &q
		}
		out.Items[i] = item
	}
	return &out
}
