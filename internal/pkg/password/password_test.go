package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("Secret#123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Verify("Secret#123", hash) {
		t.Fatal("expected matching password to verify")
	}
	if Verify("wrong", hash) {
		t.Fatal("expected non-matching password to fail")
	}
}

func TestHashTokenDeterministic(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Fatal("expected deterministic token hash")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Fatal("expected different tokens to hash differently")
	}
}

func TestValidatePolicy(t *testing.T) {
	cases := []struct {
		password string
		want     bool
	}{
		{"Secret#123", true},
		{"Aa1!Aa1!", true},
		{"short1!A", true},
		{"sh1!A", false},          // too short
		{"alllower1!", false},     // no uppercase
		{"ALLUPPER1!", false},     // no lowercase
		{"NoDigits!!", false},     // no digit
		{"NoSpecial11", false},    // no special character
		{"", false},
	}
	for _, c := range cases {
		if got := ValidatePolicy(c.password); got != c.want {
			t.Errorf("ValidatePolicy(%q) = %v, want %v", c.password, got, c.want)
		}
	}
}
