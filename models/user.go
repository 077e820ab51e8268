package models

// UserInfo is the normalized profile of the logged-in Kakao user.
type UserInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}
