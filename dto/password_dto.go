package dto

type ForgotPasswordDTO struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyResetCodeDTO struct {
	Code string `json:"code" binding:"required"`
}

type ResetPasswordDTO struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}
