package auth

import "labbooking/internal/domain"

type SignupRequest struct {
	Username       string `json:"username" binding:"required,min=3,max=64"`
	Password       string `json:"password" binding:"required,min=6,max=72"`
	PrivilegeLevel string `json:"privilege_level" binding:"required"`
}

// LoginRequest accepts JSON or an OAuth2 password form.
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type UserPublic struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	PrivilegeLevel string `json:"privilege_level"`
}

func ToUserPublic(u *domain.User) UserPublic {
	return UserPublic{
		ID:             u.ID,
		Username:       u.Username,
		PrivilegeLevel: string(u.Role),
	}
}
