package models

// Profile is one registered user
type Profile struct {
	UserName     string `json:"userName" bson:"userName"`
	FirstName    string `json:"firstName" bson:"firstName"`
	LastName     string `json:"lastName" bson:"lastName"`
	EmailAddress string `json:"emailAddress" bson:"emailAddress"`
	MobileNumber string `json:"mobileNumber" bson:"mobileNumber"`
	City         string `json:"city" bson:"city"`
	Password     string `json:"-" bson:"password"` // bcrypt hash
}

// ProfilePatch holds the fields of an UpdateProfile request. Nil fields are left untouched.
type ProfilePatch struct {
	FirstName    *string `json:"firstName,omitempty"`
	LastName     *string `json:"lastName,omitempty"`
	EmailAddress *string `json:"emailAddress,omitempty"`
	MobileNumber *string `json:"mobileNumber,omitempty"`
	City         *string `json:"city,omitempty"`
	Password     *string `json:"password,omitempty"`
}

// Empty reports whether the patch sets nothing.
func (p ProfilePatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.EmailAddress == nil &&
		p.MobileNumber == nil && p.City == nil && p.Password == nil
}

// Apply copies the set fields onto profile.
func (p ProfilePatch) Apply(profile *Profile) {
	if p.FirstName != nil {
		profile.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		profile.LastName = *p.LastName
	}
	if p.EmailAddress != nil {
		profile.EmailAddress = *p.EmailAddress
	}
	if p.MobileNumber != nil {
		profile.MobileNumber = *p.MobileNumber
	}
	if p.City != nil {
		profile.City = *p.City
	}
	if p.Password != nil {
		profile.Password = *p.Password
	}
}
