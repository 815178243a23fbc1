package naming

import (
	"strings"
	"testing"
)

func TestValidateClusterName(t *testing.T) {
	cases := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "valid", value: "partyclub7", wantErr: false},
		{name: "valid with hyphen", value: "party-club-7", wantErr: false},
		{name: "valid max length", value: strings.Repeat("a", clusterNameMaxLength), wantErr: false},
		{name: "too long", value: strings.Repeat("a", clusterNameMaxLength+1), wantErr: true},
		{name: "too short", value: "ab", wantErr: true},
		{name: "empty", value: "", wantErr: true},
		{name: "contains uppercase", value: "PartyClub", wantErr: true},
		{name: "starts with digit", value: "7club", wantErr: true},
		{name: "starts with hyphen", value: "-club", wantErr: true},
		{name: "ends with hyphen", value: "club-", wantErr: true},
		{name: "contains underscore", value: "party_club", wantErr: true},
		{name: "contains dot", value: "party.club", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateClusterName(tc.value)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error but got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidatePorts(t *testing.T) {
	cases := []struct {
		name    string
		ports   []int
		wantErr bool
	}{
		{name: "none", ports: nil, wantErr: false},
		{name: "valid", ports: []int{20000, 20001}, wantErr: false},
		{name: "bounds", ports: []int{1, 65535}, wantErr: false},
		{name: "zero", ports: []int{0}, wantErr: true},
		{name: "too large", ports: []int{80, 65536}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePorts(tc.ports)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error but got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
