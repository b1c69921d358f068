package one

// ListVNets returns all virtual networks, including their address ranges.
func (c *Client) ListVNets() ([]VNet, error) {
	body, err := c.callXML("one.vnpool.info", -2, -1, -1)
	if err != nil {
		return nil, err
	}
	var pool struct {
		VNets []xmlVNet `xml:"VNET"`
	}
	if err := decodeXML("vnet pool", body, &pool); err != nil {
		return nil, err
	}
	vnets := make([]VNet, 0, len(pool.VNets))
	for _, x := range pool.VNets {
		v, err := x.decode()
		if err != nil {
			return nil, err
		}
		vnets = append(vnets, v)
	}
	return vnets, nil
}

// VNetInfo returns a single virtual network.
func (c *Client) VNetInfo(id int) (*VNet, error) {
	body, err := c.callXML("one.vn.info", id)
	if err != nil {
		return nil, err
	}
	var x xmlVNet
	if err := decodeXML(KindVNet, body, &x); err != nil {
		return nil, err
	}
	v, err := x.decode()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateVNet allocates a virtual network in clusterID (-1 for the default
// cluster) and returns its ID.
func (c *Client) CreateVNet(tpl string, clusterID int) (int, error) {
	return c.callID("one.vn.allocate", tpl, clusterID)
}

// DeleteVNet deletes a virtual network.
func (c *Client) DeleteVNet(id int) error {
	_, err := c.call("one.vn.delete", id)
	return err
}

// ClusterAddVNet adds a virtual network to a further cluster.
func (c *Client) ClusterAddVNet(clusterID, vnetID int) error {
	_, err := c.call("one.cluster.addvnet", clusterID, vnetID)
	return err
}
