package types

import (
	"testing"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{"food", CategoryFood, false},
		{" Energy ", CategoryEnergy, false},
		{"TRANSPORTATION", CategoryTransportation, false},
		{"waste", CategoryWaste, false},
		{"", "", true},
		{"shopping", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCategory(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestViewRequiresAuth(t *testing.T) {
	for _, v := range []View{ViewWelcome, ViewLogin, ViewRegister} {
		if v.RequiresAuth() {
			t.Errorf("%s should be public", v)
		}
	}
	for _, v := range []View{ViewDashboard, ViewAdmin, ViewAddEmission} {
		if !v.RequiresAuth() {
			t.Errorf("%s should require a session", v)
		}
	}
	if _, err := ParseView("settings"); err == nil {
		t.Error("ParseView should reject unknown views")
	}
}

func TestUserStatusToggle(t *testing.T) {
	if StatusActive.Toggle() != StatusInactive {
		t.Error("active should toggle to inactive")
	}
	if StatusInactive.Toggle() != StatusActive {
		t.Error("inactive should toggle to active")
	}
}
