package models

// User roles and sign-in providers.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User represents a registered customer or administrator. PasswordHash is
// empty for federated accounts.
type User struct {
	BaseModel
	Name         string  `json:"name"`
	Email        string  `gorm:"uniqueIndex" json:"email"`
	PasswordHash string  `json:"-"`
	Role         string  `gorm:"default:user" json:"role"`
	Provider     string  `gorm:"default:local" json:"provider"`
	Orders       []Order `json:"orders,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
