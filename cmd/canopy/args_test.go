package main

import (
	"strings"
	"testing"

	"github.com/sapcc/go-bits/assert"
	"github.com/sapcc/go-bits/must"

	"github.com/jbweber/canopy/internal/quota"
	"github.com/jbweber/canopy/internal/vm"
)

func TestParseQuotaArgs(t *testing.T) {
	limits := must.ReturnT(parseQuotaArgs([]string{"cpu=16", "RAM=32768", "storage=-1", "floating_ip = 2"}))(t)
	assert.DeepEqual(t, "limits", limits, quota.Limits{
		quota.CPU:        16,
		quota.RAM:        32768,
		quota.Storage:    quota.Unlimited,
		quota.FloatingIP: 2,
	})
}

func TestParseQuotaArgs_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing equals", []string{"cpu16"}, "expected <component>=<limit>"},
		{"unknown component", []string{"gpu=1"}, `unknown quota component "gpu"`},
		{"not a number", []string{"cpu=lots"}, `invalid limit "lots" for cpu`},
		{"below unlimited", []string{"ram=-2"}, `invalid limit "-2" for ram`},
		{"duplicate", []string{"cpu=1", "cpu=2"}, "given twice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseQuotaArgs(tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParseQuotaArgs_CollectsAllErrors(t *testing.T) {
	_, err := parseQuotaArgs([]string{"gpu=1", "cpu=x"})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"gpu", `"x"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err.Error(), want)
		}
	}
}

func TestParseVMID(t *testing.T) {
	assert.DeepEqual(t, "id", must.ReturnT(parseVMID("42"))(t), 42)
	for _, arg := range []string{"", "-1", "web-1"} {
		if _, err := parseVMID(arg); err == nil {
			t.Errorf("expected error for %q", arg)
		}
	}
}

func TestValidateResize(t *testing.T) {
	tests := []struct {
		name    string
		req     vm.ResizeRequest
		wantErr bool
	}{
		{"vcpu only", vm.ResizeRequest{VCPU: 2}, false},
		{"disk only", vm.ResizeRequest{DiskMB: 20480}, false},
		{"nothing", vm.ResizeRequest{}, true},
		{"negative", vm.ResizeRequest{MemoryMB: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResize(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateResize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
