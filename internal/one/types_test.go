package one

import (
	"errors"
	"testing"

	"github.com/sapcc/go-bits/assert"
	"github.com/sapcc/go-bits/must"
)

const groupWithQuotaXML = `<GROUP>
  <ID>101</ID>
  <NAME>acme</NAME>
  <USERS><ID>5</ID></USERS>
  <ADMINS/>
  <DATASTORE_QUOTA>
    <DATASTORE><ID>1</ID><IMAGES>-1</IMAGES><IMAGES_USED>0</IMAGES_USED><SIZE>3072</SIZE><SIZE_USED>1024</SIZE_USED></DATASTORE>
    <DATASTORE><ID>100</ID><IMAGES>-1</IMAGES><IMAGES_USED>0</IMAGES_USED><SIZE>2048</SIZE><SIZE_USED>512</SIZE_USED></DATASTORE>
  </DATASTORE_QUOTA>
  <NETWORK_QUOTA>
    <NETWORK><ID>0</ID><LEASES>4</LEASES><LEASES_USED>1</LEASES_USED></NETWORK>
  </NETWORK_QUOTA>
  <VM_QUOTA>
    <VM><CPU>50.00</CPU><CPU_USED>2.50</CPU_USED><MEMORY>1024</MEMORY><MEMORY_USED>512</MEMORY_USED><VMS>-1</VMS><VMS_USED>1</VMS_USED></VM>
  </VM_QUOTA>
  <IMAGE_QUOTA/>
</GROUP>`

func TestDecodeGroup(t *testing.T) {
	var x xmlGroup
	must.SucceedT(t, decodeXML(KindGroup, groupWithQuotaXML, &x))
	g, err := x.decode()
	must.SucceedT(t, err)

	assert.DeepEqual(t, "group ID", g.ID, 101)
	assert.DeepEqual(t, "group name", g.Name, "acme")
	assert.DeepEqual(t, "datastore quota count", len(g.Quota.Datastores), 2)
	assert.DeepEqual(t, "vm quota", *g.Quota.VM, VMQuota{
		CPU: "50.00", CPUUsed: "2.50", Memory: "1024", MemoryUsed: "512", VMs: "-1", VMsUsed: "1",
	})
	assert.DeepEqual(t, "network quota", g.Quota.Networks, []NetworkQuota{{ID: "0", Leases: "4", LeasesUsed: "1"}})
}

func TestDecodeGroup_NoQuota(t *testing.T) {
	var x xmlGroup
	must.SucceedT(t, decodeXML(KindGroup, `<GROUP><ID>7</ID><NAME>fresh</NAME><DATASTORE_QUOTA/><NETWORK_QUOTA/><VM_QUOTA/></GROUP>`, &x))
	g, err := x.decode()
	must.SucceedT(t, err)
	if !g.Quota.IsEmpty() {
		t.Errorf("expected empty quota set, got %+v", g.Quota)
	}
}

func TestDecode_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing ID", `<VNET><NAME>acme_internal</NAME></VNET>`},
		{"missing NAME", `<VNET><ID>3</ID></VNET>`},
		{"non-numeric ID", `<VNET><ID>x</ID><NAME>a</NAME></VNET>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var x xmlVNet
			must.SucceedT(t, decodeXML(KindVNet, tt.body, &x))
			_, err := x.decode()
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected DecodeError, got %v", err)
			}
		})
	}
}

func TestDecodeVNet(t *testing.T) {
	body := `<VNET><ID>12</ID><NAME>acme_internal</NAME>
  <TEMPLATE><GATEWAY>10.0.1.1</GATEWAY><NETWORK_ADDRESS>10.0.1.0</NETWORK_ADDRESS><NETWORK_MASK>255.255.255.0</NETWORK_MASK></TEMPLATE>
  <AR_POOL><AR><AR_ID>0</AR_ID><IP>10.0.1.1</IP><SIZE>254</SIZE><TYPE>IP4</TYPE></AR></AR_POOL>
</VNET>`
	var x xmlVNet
	must.SucceedT(t, decodeXML(KindVNet, body, &x))
	v, err := x.decode()
	must.SucceedT(t, err)
	assert.DeepEqual(t, "first address", v.FirstAddress(), "10.0.1.1")
	assert.DeepEqual(t, "gateway", v.Gateway, "10.0.1.1")
}

func TestDecodeVM(t *testing.T) {
	body := `<VM><ID>42</ID><NAME>web-1</NAME><UID>0</UID><GID>101</GID>
  <STATE>3</STATE><LCM_STATE>3</LCM_STATE>
  <TEMPLATE>
    <CPU>0.5</CPU><VCPU>2</VCPU><MEMORY>2048</MEMORY>
    <DISK><DISK_ID>0</DISK_ID><IMAGE_ID>7</IMAGE_ID><SIZE>2048</SIZE></DISK>
    <DISK><DISK_ID>1</DISK_ID><SIZE>1024</SIZE></DISK>
    <NIC><NIC_ID>0</NIC_ID><NETWORK_ID>12</NETWORK_ID><IP>10.0.1.5</IP></NIC>
  </TEMPLATE>
  <USER_TEMPLATE><CANOPY_TENANT>acme</CANOPY_TENANT></USER_TEMPLATE>
</VM>`
	var x xmlVM
	must.SucceedT(t, decodeXML(KindVM, body, &x))
	vm, err := x.decode()
	must.SucceedT(t, err)

	if !vm.IsRunning() {
		t.Errorf("expected running VM, got %s", vm.StateString())
	}
	assert.DeepEqual(t, "vcpu", vm.VCPU, 2)
	assert.DeepEqual(t, "cpu", vm.CPU, 0.5)
	assert.DeepEqual(t, "disks", vm.Disks, []Disk{{ID: 0, SizeMB: 2048}, {ID: 1, SizeMB: 1024}})
	assert.DeepEqual(t, "ip", vm.IP(), "10.0.1.5")
	assert.DeepEqual(t, "user template", vm.UserTemplate, map[string]string{"CANOPY_TENANT": "acme"})
}

func TestDecodeVirtualRouter(t *testing.T) {
	var x xmlVirtualRouter
	must.SucceedT(t, decodeXML(KindVirtualRouter, `<VROUTER><ID>4</ID><NAME>acme_router</NAME><VMS><ID>40</ID><ID>41</ID></VMS></VROUTER>`, &x))
	r, err := x.decode()
	must.SucceedT(t, err)
	assert.DeepEqual(t, "vm ids", r.VMIDs, []int{40, 41})
}

func TestVMState_Failure(t *testing.T) {
	tests := []struct {
		vm     VM
		failed bool
	}{
		{VM{State: VMStateActive, LCMState: LCMBootFailure}, true},
		{VM{State: VMStateActive, LCMState: LCMPrologFailure}, true},
		{VM{State: VMStateCloningFailure}, true},
		{VM{State: VMStateFailed}, true},
		{VM{State: VMStateActive, LCMState: LCMBoot}, false},
		{VM{State: VMStatePending}, false},
		{VM{State: VMStatePoweroff, LCMState: LCMBootFailure}, false},
	}
	for _, tt := range tests {
		if got := tt.vm.IsFailed(); got != tt.failed {
			t.Errorf("%s: IsFailed() = %v, want %v", tt.vm.StateString(), got, tt.failed)
		}
	}
}
