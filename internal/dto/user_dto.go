package dto

type CreateUserInput struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	RoleID    uint   `json:"role_id" binding:"required,oneof=1 2 3"`
	Locale    string `json:"locale" binding:"omitempty,oneof=en es"`
	TimeZone  string `json:"time_zone"`
}

type UpdateUserInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password" binding:"omitempty,min=8"`
	RoleID    *uint   `json:"role_id" binding:"omitempty,oneof=1 2 3"`
	Locale    *string `json:"locale" binding:"omitempty,oneof=en es"`
	TimeZone  *string `json:"time_zone"`
}
