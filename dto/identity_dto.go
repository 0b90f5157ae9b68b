package dto

// SignupDTO covers all three roles; role-specific fields are simply ignored
// for roles that don't carry them.
type SignupDTO struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PhoneNumber string `json:"phoneNumber"`
	DateOfBirth string `json:"dateOfBirth"`

	// Patient
	Weight    float64 `json:"weight"`
	Height    float64 `json:"height"`
	BloodType string  `json:"bloodType"`

	// Doctor
	ClinicName     string  `json:"clinicName"`
	ClinicAddress  string  `json:"clinicAddress"`
	WorkHours      string  `json:"workHours"`
	Rate           float64 `json:"rate"`
	Specialization string  `json:"specialization"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
