package one

// ListVDCs returns all virtual data centers.
func (c *Client) ListVDCs() ([]VDC, error) {
	body, err := c.callXML("one.vdcpool.info")
	if err != nil {
		return nil, err
	}
	var pool struct {
		VDCs []xmlVDC `xml:"VDC"`
	}
	if err := decodeXML("vdc pool", body, &pool); err != nil {
		return nil, err
	}
	vdcs := make([]VDC, 0, len(pool.VDCs))
	for _, x := range pool.VDCs {
		v, err := x.decode()
		if err != nil {
			return nil, err
		}
		vdcs = append(vdcs, v)
	}
	return vdcs, nil
}

// CreateVDC allocates a VDC from tpl and returns its ID.
func (c *Client) CreateVDC(tpl string) (int, error) {
	return c.callID("one.vdc.allocate", tpl, -1)
}

// DeleteVDC deletes a VDC.
func (c *Client) DeleteVDC(id int) error {
	_, err := c.call("one.vdc.delete", id)
	return err
}

// VDCAddGroup links a group to a VDC.
func (c *Client) VDCAddGroup(vdcID, groupID int) error {
	_, err := c.call("one.vdc.addgroup", vdcID, groupID)
	return err
}

// VDCAddCluster grants the VDC access to a cluster in a zone.
func (c *Client) VDCAddCluster(vdcID, zoneID, clusterID int) error {
	_, err := c.call("one.vdc.addcluster", vdcID, zoneID, clusterID)
	return err
}

// VDCAddVNet grants the VDC access to a virtual network in a zone.
func (c *Client) VDCAddVNet(vdcID, zoneID, vnetID int) error {
	_, err := c.call("one.vdc.addvnet", vdcID, zoneID, vnetID)
	return err
}
