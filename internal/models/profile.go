package models

// Profile holds the personal details of an authenticated user. ID is the
// user id issued by the auth platform.
type Profile struct {
	ID         string  `json:"id" gorm:"type:uuid;primaryKey"`
	Email      string  `json:"email" gorm:"index"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Phone      *string `json:"phone"`
	AvatarURL  *string `json:"avatar_url"`
	Birthdate  *string `json:"birthdate"`
	Gender     *string `json:"gender"`
	CreateTime string  `json:"create_time" gorm:"index"`
	UpdateTime string  `json:"update_time"`
}

// FullName returns "first last" trimmed, or "" when neither is set.
func (p *Profile) FullName() string {
	if p == nil {
		return ""
	}
	return joinName(p.FirstName, p.LastName)
}
