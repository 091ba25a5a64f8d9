package domain

import "strings"

// ShippingInfo is the checkout form. Validation is enforced by the
// checkout orchestrator; vnphone is a custom rule for Vietnamese mobile
// numbers.
type ShippingInfo struct {
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone" validate:"required,vnphone"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Address  string `json:"address" validate:"required"`
	City     string `json:"city" validate:"required"`
	District string `json:"district" validate:"required"`
	Note     string `json:"note,omitempty"`
}

// FlattenAddress collapses the address fields into the single string the
// Order Record Store persists: "address, district, city".
func (s ShippingInfo) FlattenAddress() string {
	return strings.Join([]string{s.Address, s.District, s.City}, ", ")
}
