package domain

// Contact is a directory entry for a user or a group (value object)
type Contact struct {
	ID       string
	NickName string
}

// DisplayName returns the nickname, falling back to the raw ID
func (c *Contact) DisplayName() string {
	if c.NickName == "" {
		return c.ID
	}
	return c.NickName
}
