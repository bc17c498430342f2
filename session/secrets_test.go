package session

import "testing"

func TestSecretBoxRoundTrip(t *testing.T) {
	box := NewSecretBox("correct-horse-battery-staple")

	ciphertext, err := box.Encrypt("hunter2")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if ciphertext == "hunter2" {
		t.Fatal("Encrypt returned the plaintext unchanged")
	}

	plain, err := box.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if plain != "hunter2" {
		t.Fatalf("Decrypt = %q, want %q", plain, "hunter2")
	}
}

func TestSecretBoxWrongPassphraseFails(t *testing.T) {
	encryptBox := NewSecretBox("passphrase-a")
	ciphertext, err := encryptBox.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	decryptBox := NewSecretBox("passphrase-b")
	if _, err := decryptBox.Decrypt(ciphertext); err == nil {
		t.Fatal("Decrypt succeeded with the wrong passphrase's key")
	}
}

func TestSecretBoxDecryptRejectsGarbage(t *testing.T) {
	box := NewSecretBox("whatever")
	if _, err := box.Decrypt("not-valid-base64!!"); err == nil {
		t.Fatal("Decrypt accepted non-base64 input")
	}
	if _, err := box.Decrypt("c2hvcnQ="); err == nil {
		t.Fatal("Decrypt accepted a ciphertext shorter than the GCM nonce")
	}
}

func TestSecretBoxNoncesDiffer(t *testing.T) {
	box := NewSecretBox("passphrase")
	a, err := box.Encrypt("same plaintext")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	b, err := box.Encrypt("same plaintext")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if a == b {
		t.Fatal("two Encrypt calls on the same plaintext produced identical ciphertext; nonce reuse")
	}
}
