package entity

import "time"

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

type Profile struct {
	ID        string    `json:"id" firestore:"id"`
	Email     string    `json:"email" firestore:"email"`
	FullName  string    `json:"full_name" firestore:"fullName"`
	Username  string    `json:"username" firestore:"username"`
	Role      string    `json:"role" firestore:"role"`
	AvatarURL string    `json:"avatar_url,omitempty" firestore:"avatarUrl,omitempty"`
	Bio       string    `json:"bio,omitempty" firestore:"bio,omitempty"`
	Website   string    `json:"website,omitempty" firestore:"website,omitempty"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (p *Profile) IsSeller() bool { return p.Role == RoleSeller }

// UserSummary is the public identity embedded in listings.
type UserSummary struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (p *Profile) Summary() *UserSummary {
	return &UserSummary{ID: p.ID, FullName: p.FullName, Username: p.Username, AvatarURL: p.AvatarURL}
}

func (p *Profile) IsAdmin() bool { return p.Role == RoleAdmin }

// SellerProfile is the public view of a seller.
type SellerProfile struct {
	*Profile
	Products []*Product `json:"products"`
}

type RoleCounts struct {
	Buyers  int64 `json:"buyers"`
	Sellers int64 `json:"sellers"`
	Admins  int64 `json:"admins"`
}

func (r RoleCounts) Total() int64 {
	return r.Buyers + r.Sellers + r.Admins
}
