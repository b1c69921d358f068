package subnet

import (
	"strconv"
	"testing"

	"github.com/sapcc/go-bits/assert"
)

func itoa(i int) string { return strconv.Itoa(i) }

func TestLayoutFor(t *testing.T) {
	tests := []struct {
		cidr string
		want Layout
	}{
		{
			cidr: "10.0.1.0/24",
			want: Layout{
				CIDR:           "10.0.1.0/24",
				NetworkAddress: "10.0.1.0",
				NetworkMask:    "255.255.255.0",
				Gateway:        "10.0.1.1",
				FirstIP:        "10.0.1.1",
				Size:           254,
			},
		},
		{
			cidr: "172.16.0.64/26",
			want: Layout{
				CIDR:           "172.16.0.64/26",
				NetworkAddress: "172.16.0.64",
				NetworkMask:    "255.255.255.192",
				Gateway:        "172.16.0.65",
				FirstIP:        "172.16.0.65",
				Size:           62,
			},
		},
		{
			// host bits are masked away
			cidr: "192.168.5.7/24",
			want: Layout{
				CIDR:           "192.168.5.0/24",
				NetworkAddress: "192.168.5.0",
				NetworkMask:    "255.255.255.0",
				Gateway:        "192.168.5.1",
				FirstIP:        "192.168.5.1",
				Size:           254,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.cidr, func(t *testing.T) {
			got, err := LayoutFor(tt.cidr)
			if err != nil {
				t.Fatalf("LayoutFor() error = %v", err)
			}
			assert.DeepEqual(t, "layout", got, tt.want)
		})
	}
}

func TestLayoutFor_Invalid(t *testing.T) {
	for _, in := range []string{"not-a-cidr", "10.0.0.0/31", "fd00::/64"} {
		if _, err := LayoutFor(in); err == nil {
			t.Errorf("LayoutFor(%q): expected error", in)
		}
	}
}
