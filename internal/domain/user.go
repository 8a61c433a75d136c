package domain

import "time"

type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleHost       Role = "HOST"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// PermSuperAdminOnly is the one permission an ADMIN does not hold.
const PermSuperAdminOnly = "SUPER_ADMIN_ONLY"

type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Phone       *string    `json:"phone,omitempty"`
	Avatar      *string    `json:"avatar,omitempty"`
	Nationality *string    `json:"nationality,omitempty"`
	IsVerified  bool       `json:"isVerified"`
	IsActive    bool       `json:"isActive"`
	Role        Role       `json:"role"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u != nil && (u.Role == RoleAdmin || u.Role == RoleSuperAdmin)
}

func (u *User) IsSuperAdmin() bool { return u != nil && u.Role == RoleSuperAdmin }

func (u *User) HasPermission(p string) bool {
	switch {
	case u == nil:
		return false
	case u.Role == RoleSuperAdmin:
		return true
	case u.Role == RoleAdmin:
		return p != PermSuperAdminOnly
	}
	return false
}

// Permissions gate UI affordances only; the backend enforces access.
type Permissions struct {
	CanManageHotels   bool `json:"canManageHotels"`
	CanManageUsers    bool `json:"canManageUsers"`
	CanViewAnalytics  bool `json:"canViewAnalytics"`
	CanManageSettings bool `json:"canManageSettings"`
	CanHandleBookings bool `json:"canHandleBookings"`
	IsHost            bool `json:"isHost"`
	IsCustomer        bool `json:"isCustomer"`
}

func (u *User) Permissions() Permissions {
	if u == nil {
		return Permissions{}
	}
	admin := u.IsAdmin()
	return Permissions{
		CanManageHotels:   admin,
		CanManageUsers:    admin,
		CanViewAnalytics:  admin,
		CanManageSettings: u.Role == RoleSuperAdmin,
		CanHandleBookings: admin,
		IsHost:            u.Role == RoleHost,
		IsCustomer:        u.Role == RoleCustomer,
	}
}

// UserPatch carries the fields UpdateUser may change; nil means unchanged.
type UserPatch struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
	Nationality *string `json:"nationality,omitempty"`
}

func (u User) Apply(p UserPatch) User {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Phone != nil {
		u.Phone = p.Phone
	}
	if p.Avatar != nil {
		u.Avatar = p.Avatar
	}
	if p.Nationality != nil {
		u.Nationality = p.Nationality
	}
	return u
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Registration struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	FirstName string  `json:"firstName" validate:"required"`
	LastName  string  `json:"lastName" validate:"required"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// Session is what the backend returns on login and register.
type Session struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
