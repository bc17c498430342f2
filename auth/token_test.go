package auth

import "testing"

func TestGenerateAndValidateOperatorToken(t *testing.T) {
	token, err := GenerateOperatorToken("op-1", "admin")
	if err != nil {
		t.Fatalf("GenerateOperatorToken: %v", err)
	}

	claims, err := ValidateTokenWithDefault(token)
	if err != nil {
		t.Fatalf("ValidateTokenWithDefault: %v", err)
	}
	if claims.OperatorID != "op-1" {
		t.Fatalf("OperatorID = %q, want op-1", claims.OperatorID)
	}
	if claims.Role != "admin" {
		t.Fatalf("Role = %q, want admin", claims.Role)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateOperatorTokenWithSecret("op-2", "viewer", []byte("secret-a"))
	if err != nil {
		t.Fatalf("GenerateOperatorTokenWithSecret: %v", err)
	}
	if _, err := ValidateToken(token, []byte("secret-b")); err == nil {
		t.Fatal("ValidateToken succeeded with the wrong secret")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateTokenWithDefault("not-a-jwt"); err == nil {
		t.Fatal("ValidateTokenWithDefault accepted a malformed token")
	}
}
