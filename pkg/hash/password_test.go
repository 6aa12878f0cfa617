package hash

import (
	"strings"
	"testing"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "SecurePass123!",
			wantErr:  false,
		},
		{
			name:     "minimum length password",
			password: "Pass123!",
			wantErr:  false,
		},
		{
			name:     "password too short",
			password: "short",
			wantErr:  true,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed, err := Hash(tt.password)

			if tt.wantErr {
				if err == nil {
					t.Error("Hash() expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("Hash() error = %v", err)
				return
			}

			if !strings.HasPrefix(hashed, "$2a$") {
				t.Errorf("Hash() result is not a bcrypt hash: %s", hashed)
			}

			if hashed == tt.password {
				t.Error("Hash() returned the plaintext password")
			}
		})
	}
}

func TestCompare(t *testing.T) {
	password := "ComparePass123!"
	hashed, err := Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if err := Compare(hashed, password); err != nil {
		t.Errorf("Compare() error for matching password = %v", err)
	}

	if err := Compare(hashed, "WrongPassword1!"); err == nil {
		t.Error("Compare() expected error for wrong password")
	}
}
