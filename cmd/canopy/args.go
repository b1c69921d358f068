package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sapcc/go-bits/errext"

	"github.com/jbweber/canopy/internal/quota"
	"github.com/jbweber/canopy/internal/vm"
)

// parseQuotaArgs parses component=limit pairs such as "cpu=16".
func parseQuotaArgs(args []string) (quota.Limits, error) {
	limits := make(quota.Limits, len(args))
	var errs errext.ErrorSet
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			errs.Addf("invalid quota %q: expected <component>=<limit>", arg)
			continue
		}
		c := quota.Component(strings.ToLower(strings.TrimSpace(key)))
		if !quota.IsKnown(c) {
			errs.Addf("unknown quota component %q (known: %s)", key, componentList())
			continue
		}
		limit, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || limit < quota.Unlimited {
			errs.Addf("invalid limit %q for %s: expected an integer >= %d", value, c, quota.Unlimited)
			continue
		}
		if _, dup := limits[c]; dup {
			errs.Addf("quota component %s given twice", c)
			continue
		}
		limits[c] = limit
	}
	if !errs.IsEmpty() {
		return nil, fmt.Errorf("invalid quota: %s", errs.Join(", "))
	}
	return limits, nil
}

func componentList() string {
	names := make([]string, 0, len(quota.Components()))
	for _, c := range quota.Components() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func parseVMID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid VM ID %q", arg)
	}
	return id, nil
}

func validateResize(req vm.ResizeRequest) error {
	if req.VCPU < 0 || req.MemoryMB < 0 || req.DiskMB < 0 {
		return fmt.Errorf("resize values must not be negative")
	}
	if req == (vm.ResizeRequest{}) {
		return fmt.Errorf("nothing to resize: set --vcpu, --memory-mb or --disk-mb")
	}
	return nil
}
