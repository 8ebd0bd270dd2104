// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package auth

import (
	"testing"

	"github.com/mdhender/faultrpt/model"
)

func strp(s string) *string { return &s }

func TestCanDelete(t *testing.T) {
	policy := NewOriginPolicyWithPrivileged([]string{"127.0.0.1", "::1", "192.168.1.10"})

	owned := &model.Report{ID: 1, UploaderIP: strp("10.0.0.5")}
	orphan := &model.Report{ID: 2}
	aggregate := &model.Report{ID: 3, ReportType: model.ReportTypeAggregateLatestAll}

	tests := []struct {
		name      string
		requester string
		report    *model.Report
		want      bool
	}{
		{"uploader deletes own report", "10.0.0.5", owned, true},
		{"other address denied", "10.0.0.6", owned, false},
		{"loopback deletes anything", "127.0.0.1", owned, true},
		{"ipv6 loopback deletes anything", "::1", owned, true},
		{"host address deletes anything", "192.168.1.10", owned, true},
		{"mapped form of uploader allowed", "::ffff:10.0.0.5", owned, true},
		{"orphan denied for non-privileged", "10.0.0.5", orphan, false},
		{"orphan allowed for privileged", "127.0.0.1", orphan, true},
		{"aggregate denied for non-privileged", "10.0.0.5", aggregate, false},
		{"aggregate allowed for privileged", "127.0.0.1", aggregate, true},
		{"empty requester denied", "", owned, false},
		{"unknown requester denied", "unknown", owned, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.CanDelete(tt.requester, tt.report); got != tt.want {
				t.Errorf("CanDelete(%q, report %d) = %v, want %v", tt.requester, tt.report.ID, got, tt.want)
			}
		})
	}
}
