package postgres

import "testing"

func TestTokenCipherRoundTrip(t *testing.T) {
	c, err := newTokenCipher("passphrase")
	if err != nil {
		t.Fatalf("newTokenCipher error: %v", err)
	}

	encrypted, err := c.Encrypt("1//refresh-token")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if encrypted == "1//refresh-token" {
		t.Fatalf("ciphertext equals plaintext")
	}

	decrypted, err := c.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Decrypt error: %v", err)
	}
	if decrypted != "1//refresh-token" {
		t.Fatalf("decrypted = %q", decrypted)
	}
}

func TestTokenCipherEmptyPassthrough(t *testing.T) {
	c, err := newTokenCipher("passphrase")
	if err != nil {
		t.Fatalf("newTokenCipher error: %v", err)
	}

	if got, err := c.Encrypt(""); err != nil || got != "" {
		t.Fatalf("Encrypt(\"\") = %q, %v", got, err)
	}
	if got, err := c.Decrypt(""); err != nil || got != "" {
		t.Fatalf("Decrypt(\"\") = %q, %v", got, err)
	}
}

func TestTokenCipherNonDeterministic(t *testing.T) {
	c, err := newTokenCipher("passphrase")
	if err != nil {
		t.Fatalf("newTokenCipher error: %v", err)
	}

	first, err := c.Encrypt("token")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	second, err := c.Encrypt("token")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if first == second {
		t.Fatalf("two encryptions produced identical ciphertext")
	}
}

func TestTokenCipherWrongKey(t *testing.T) {
	c1, err := newTokenCipher("passphrase-one")
	if err != nil {
		t.Fatalf("newTokenCipher error: %v", err)
	}
	c2, err := newTokenCipher("passphrase-two")
	if err != nil {
		t.Fatalf("newTokenCipher error: %v", err)
	}

	encrypted, err := c1.Encrypt("token")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if _, err := c2.Decrypt(encrypted); err == nil {
		t.Fatalf("Decrypt with wrong key succeeded")
	}
}

func TestTokenCipherRequiresSecret(t *testing.T) {
	if _, err := newTokenCipher(""); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestTokenCipherRejectsGarbage(t *testing.T) {
	c, err := newTokenCipher("passphrase")
	if err != nil {
		t.Fatalf("newTokenCipher error: %v", err)
	}
	if _, err := c.Decrypt("not-base64!!"); err == nil {
		t.Fatalf("expected error for invalid encoding")
	}
	if _, err := c.Decrypt("c2hvcnQ="); err == nil {
		t.Fatalf("expected error for truncated ciphertext")
	}
}
