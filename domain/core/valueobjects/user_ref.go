package valueobjects

// UserRef identifies the operator who performed an action. Stored on nodes
// and comments for audit purposes; resolution to a live account is a session
// provider concern.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IsZero reports whether the reference is empty
func (u UserRef) IsZero() bool {
	return u.ID == "" && u.Name == "" && u.Email == ""
}
