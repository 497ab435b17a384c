// Package entity contains the core business objects of the project.
package entity

// Role represents the type of account a user holds in the platform.
type Role string

const (
	// RoleCustomer is the default role for a newly registered user.
	RoleCustomer Role = "customer"
	// RoleRestaurantOwner identifies accounts that manage a restaurant.
	RoleRestaurantOwner Role = "restaurant_owner"
	// RoleDeliveryPartner identifies courier accounts.
	RoleDeliveryPartner Role = "delivery_partner"
	// RoleAdmin identifies platform operators.
	RoleAdmin Role = "admin"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleRestaurantOwner, RoleDeliveryPartner, RoleAdmin:
		return true
	default:
		return false
	}
}
