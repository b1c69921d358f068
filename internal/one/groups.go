package one

// ListGroups returns all groups visible to the session.
func (c *Client) ListGroups() ([]Group, error) {
	body, err := c.callXML("one.grouppool.info")
	if err != nil {
		return nil, err
	}
	var pool struct {
		Groups []xmlGroup `xml:"GROUP"`
	}
	if err := decodeXML("group pool", body, &pool); err != nil {
		return nil, err
	}
	groups := make([]Group, 0, len(pool.Groups))
	for _, x := range pool.Groups {
		g, err := x.decode()
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// GroupInfo returns a single group including its quota and usage.
func (c *Client) GroupInfo(id int) (*Group, error) {
	body, err := c.callXML("one.group.info", id)
	if err != nil {
		return nil, err
	}
	var x xmlGroup
	if err := decodeXML(KindGroup, body, &x); err != nil {
		return nil, err
	}
	g, err := x.decode()
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGroup allocates a group and returns its ID.
func (c *Client) CreateGroup(name string) (int, error) {
	return c.callID("one.group.allocate", name)
}

// DeleteGroup deletes a group.
func (c *Client) DeleteGroup(id int) error {
	_, err := c.call("one.group.delete", id)
	return err
}

// SetGroupQuota replaces the quota sections named in tpl.
func (c *Client) SetGroupQuota(id int, tpl string) error {
	_, err := c.call("one.group.quota", id, tpl)
	return err
}

// AddGroupAdmin makes the user an administrator of the group.
func (c *Client) AddGroupAdmin(groupID, userID int) error {
	_, err := c.call("one.group.addadmin", groupID, userID)
	return err
}
