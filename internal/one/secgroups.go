package one

// ListSecurityGroups returns all security groups.
func (c *Client) ListSecurityGroups() ([]SecurityGroup, error) {
	body, err := c.callXML("one.secgrouppool.info", -2, -1, -1)
	if err != nil {
		return nil, err
	}
	var pool struct {
		SecurityGroups []xmlSecurityGroup `xml:"SECURITY_GROUP"`
	}
	if err := decodeXML("security group pool", body, &pool); err != nil {
		return nil, err
	}
	groups := make([]SecurityGroup, 0, len(pool.SecurityGroups))
	for _, x := range pool.SecurityGroups {
		sg, err := x.decode()
		if err != nil {
			return nil, err
		}
		groups = append(groups, sg)
	}
	return groups, nil
}

// CreateSecurityGroup allocates a security group from tpl and returns its ID.
func (c *Client) CreateSecurityGroup(tpl string) (int, error) {
	return c.callID("one.secgroup.allocate", tpl)
}

// DeleteSecurityGroup deletes a security group.
func (c *Client) DeleteSecurityGroup(id int) error {
	_, err := c.call("one.secgroup.delete", id)
	return err
}
