package one

// ListUsers returns all users.
func (c *Client) ListUsers() ([]User, error) {
	body, err := c.callXML("one.userpool.info")
	if err != nil {
		return nil, err
	}
	var pool struct {
		Users []xmlUser `xml:"USER"`
	}
	if err := decodeXML("user pool", body, &pool); err != nil {
		return nil, err
	}
	users := make([]User, 0, len(pool.Users))
	for _, x := range pool.Users {
		u, err := x.decode()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// CreateUser allocates a core-auth user whose primary group is the first of
// groupIDs and returns its ID.
func (c *Client) CreateUser(name, password string, groupIDs []int) (int, error) {
	return c.callID("one.user.allocate", name, password, "", groupIDs)
}

// SetUserPassword replaces the password of a user.
func (c *Client) SetUserPassword(id int, password string) error {
	_, err := c.call("one.user.passwd", id, password)
	return err
}

// DeleteUser deletes a user.
func (c *Client) DeleteUser(id int) error {
	_, err := c.call("one.user.delete", id)
	return err
}
