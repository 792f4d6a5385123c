package dto

// PostJwtResponse is returned by POST /user/login.
type PostJwtResponse struct {
	UserID       int64  `json:"userId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
