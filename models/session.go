package models

// Session pairs an upstream access token with the user profile it belongs to.
// The credential store persists it as a single unit so a reader never sees a
// token without its matching profile.
type Session struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	User         UserInfo `json:"user"`
}

// Valid reports whether the session carries both a token and a user profile.
func (s Session) Valid() bool {
	return s.AccessToken != "" && s.User.ID != ""
}
