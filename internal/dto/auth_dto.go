package dto

import "github.com/google/uuid"

type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	Account     AccountDTO `json:"account"`
}

type AccountDTO struct {
	Id        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}
