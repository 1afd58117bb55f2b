package otp

import "testing"

func TestGenerateCodeFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("non-digit in code %q", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("codes never vary")
	}
}

func TestHashCodeDeterministic(t *testing.T) {
	if HashCode("123456") != HashCode("123456") {
		t.Fatal("same code must hash identically")
	}
	if HashCode("123456") == HashCode("654321") {
		t.Fatal("different codes must not collide")
	}
	if len(HashCode("123456")) != 64 {
		t.Fatal("expected hex-encoded SHA-256")
	}
}

func TestCodeEqual(t *testing.T) {
	hash := HashCode("123456")
	if !CodeEqual("123456", hash) {
		t.Fatal("matching code rejected")
	}
	if CodeEqual("123457", hash) {
		t.Fatal("wrong code accepted")
	}
	if CodeEqual("", hash) {
		t.Fatal("empty code accepted")
	}
}
