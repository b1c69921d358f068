package one

// ListVirtualRouters returns all virtual routers.
func (c *Client) ListVirtualRouters() ([]VirtualRouter, error) {
	body, err := c.callXML("one.vrouterpool.info", -2, -1, -1)
	if err != nil {
		return nil, err
	}
	var pool struct {
		Routers []xmlVirtualRouter `xml:"VROUTER"`
	}
	if err := decodeXML("virtual router pool", body, &pool); err != nil {
		return nil, err
	}
	routers := make([]VirtualRouter, 0, len(pool.Routers))
	for _, x := range pool.Routers {
		r, err := x.decode()
		if err != nil {
			return nil, err
		}
		routers = append(routers, r)
	}
	return routers, nil
}

// VirtualRouterInfo returns a single virtual router with its current VM IDs.
func (c *Client) VirtualRouterInfo(id int) (*VirtualRouter, error) {
	body, err := c.callXML("one.vrouter.info", id)
	if err != nil {
		return nil, err
	}
	var x xmlVirtualRouter
	if err := decodeXML(KindVirtualRouter, body, &x); err != nil {
		return nil, err
	}
	r, err := x.decode()
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateVirtualRouter allocates a virtual router from tpl and returns its ID.
func (c *Client) CreateVirtualRouter(tpl string) (int, error) {
	return c.callID("one.vrouter.allocate", tpl)
}

// InstantiateVirtualRouter creates count appliance VMs for the router from
// templateID. extra is merged into the VM template.
func (c *Client) InstantiateVirtualRouter(id, count, templateID int, name string, hold bool, extra string) (int, error) {
	return c.callID("one.vrouter.instantiate", id, count, templateID, name, hold, extra)
}

// DeleteVirtualRouter deletes a virtual router. Its appliance VMs are
// terminated by the backend asynchronously.
func (c *Client) DeleteVirtualRouter(id int) error {
	_, err := c.call("one.vrouter.delete", id)
	return err
}
