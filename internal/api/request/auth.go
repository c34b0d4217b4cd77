package request

type Register struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8,max=256"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=200"`
	Role        string  `json:"role" validate:"required,oneof=company consumer"`
	CompanyName string  `json:"company_name" validate:"max=200"`
}

type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
