package entity

// Upload is a file picked in a form and forwarded to the backend as a multipart part.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// AuthResult is the backend's login response.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
