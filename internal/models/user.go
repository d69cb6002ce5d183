package models

// Profile is written once at registration to users/{uid}/profile.
type Profile struct {
	Email     string `json:"email" bson:"email"`
	CreatedAt int64  `json:"createdAt" bson:"createdAt"` // milliseconds since epoch
	Nickname  string `json:"nickname" bson:"nickname"`
}

// Identity is the user handle issued by the auth service. Anonymous guests have no email.
type Identity struct {
	UID       string `json:"uid"`
	Email     string `json:"email,omitempty"`
	Anonymous bool   `json:"anonymous"`
}

// DisplayName is what the navigation bar shows for the signed-in user.
func (i *Identity) DisplayName() string {
	if i == nil {
		return ""
	}
	if i.Email == "" {
		return "Guest"
	}
	return i.Email
}
