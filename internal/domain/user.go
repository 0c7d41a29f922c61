package domain

import "time"

type User struct {
	ID               string    `json:"-"`
	Email            string    `json:"email" validate:"required,email"`
	Name             string    `json:"name" validate:"required"`
	Role             string    `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	Status           string    `json:"status,omitempty" validate:"omitempty,oneof=active blocked"`
	ProfileCompleted bool      `json:"profileCompleted"`
	IsEmailVerified  bool      `json:"isEmailVerified"`
	TwoFactorEnabled bool      `json:"twoFactorEnabled,omitempty"`
	PhoneNumber      string    `json:"phoneNumber,omitempty"`
	PhotoURL         string    `json:"photoURL,omitempty"`
	Gender           string    `json:"gender,omitempty" validate:"omitempty,oneof=Male Female Other"`
	DateOfBirth      string    `json:"dateOfBirth,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == string(RoleAdmin)
}

// UserFromDocument reads the fields the admin tooling needs, tolerating
// missing or mistyped values the way the stored data may have them.
func UserFromDocument(d Document) User {
	u := User{ID: d.ID}
	u.Email, _ = d.Fields.String("email")
	u.Name, _ = d.Fields.String("name")
	u.Role, _ = d.Fields.String("role")
	u.Status, _ = d.Fields.String("status")
	u.ProfileCompleted, _ = d.Fields.Bool("profileCompleted")
	u.IsEmailVerified, _ = d.Fields.Bool("isEmailVerified")
	u.CreatedAt, _ = d.Fields.Time("createdAt")
	u.UpdatedAt, _ = d.Fields.Time("updatedAt")
	return u
}
