package model

import "testing"

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"", false},
		{"123456", false},
		{"1234567", true},
		{" 9876543210 ", true},
		{"1234567890123", true},
		{"12345678901234", false},
		{"98765-43210", false},
		{"+919876543210", false},
		{"\u0661\u0662\u0663\u0664\u0665\u0666\u0667", false}, // non-ASCII digits
	}

	for _, tt := range tests {
		if got := ValidatePhone(tt.phone); got != tt.want {
			t.Errorf("ValidatePhone(%q) = %v, want %v", tt.phone, got, tt.want)
		}
	}
}

func TestParseVegType(t *testing.T) {
	tests := []struct {
		in      string
		want    VegType
		wantErr bool
	}{
		{"Veg", VegTypeVeg, false},
		{"veg", VegTypeVeg, false},
		{" NON-VEG ", VegTypeNonVeg, false},
		{"mixed", VegTypeMixed, false},
		{"vegan", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseVegType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVegType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVegType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusOpen, false},
		{StatusClaimed, false},
		{StatusCompleted, true},
		{StatusExpired, true},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}

	if ParseStatus(" Claimed ") != StatusClaimed {
		t.Error("expected ParseStatus to normalize case and whitespace")
	}
	if ParseStatus("archived").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}

func TestIdentityNormalization(t *testing.T) {
	// "é" precomposed vs. "e" + combining acute accent.
	a := NewIdentity("Cafe\u0301 North ", " 9876543210")
	b := NewIdentity("Caf\u00e9 North", "9876543210")
	if !a.Same(b) {
		t.Errorf("expected %+v and %+v to be the same identity", a, b)
	}

	if err := NewIdentity("", "9876543210").Validate(); err == nil {
		t.Error("expected error for empty name")
	}
	if err := NewIdentity("Ravi", "12ab").Validate(); err == nil {
		t.Error("expected error for bad phone")
	}
	if err := a.Validate(); err != nil {
		t.Errorf("expected valid identity, got %v", err)
	}
}

func TestRedactFor(t *testing.T) {
	p := Post{
		DonorName: "Canteen", DonorPhone: "9000000001",
		ClaimerName: "Asha", ClaimerPhone: "9000000002",
		DonorCode: "1234", VolunteerCode: "5678",
	}

	donorView := p.RedactFor(Identity{Name: "Canteen", Phone: "9000000001"})
	if donorView.DonorCode != "1234" || donorView.VolunteerCode != "" {
		t.Errorf("donor view: got donor=%q volunteer=%q", donorView.DonorCode, donorView.VolunteerCode)
	}

	claimerView := p.RedactFor(Identity{Name: "Asha", Phone: "9000000002"})
	if claimerView.DonorCode != "" || claimerView.VolunteerCode != "5678" {
		t.Errorf("claimer view: got donor=%q volunteer=%q", claimerView.DonorCode, claimerView.VolunteerCode)
	}

	anon := p.RedactFor(Identity{})
	if anon.DonorCode != "" || anon.VolunteerCode != "" {
		t.Error("expected anonymous view to hide both codes")
	}

	// Unclaimed post: an anonymous viewer must not match the empty claimer.
	p.ClaimerName, p.ClaimerPhone, p.VolunteerCode = "", "", ""
	if got := p.RedactFor(Identity{}); got.DonorCode != "" {
		t.Error("expected donor code hidden from anonymous viewer")
	}

	if _, err := ParseActor("Volunteer"); err != nil {
		t.Errorf("ParseActor: %v", err)
	}
	if _, err := ParseActor("admin"); err == nil {
		t.Error("expected error for unknown actor")
	}
}
