package export

import (
	"bytes"
	"io"
	"testing"

	"filippo.io/age"
)

func TestEncryptRoundtrip(t *testing.T) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("generate identity: %v", err)
	}

	plaintext := []byte(`{"username":"nadia"}`)
	ciphertext, err := Encrypt(plaintext, identity.Recipient().String())
	if err != nil {
		t.Fatalf("Encrypt() failed: %v", err)
	}
	if len(ciphertext) == 0 {
		t.Fatal("Encrypt() returned empty ciphertext")
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		t.Fatalf("Decrypt() failed: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read decrypted: %v", err)
	}
	if string(got) != string(plaintext) {
		t.Errorf("roundtrip = %q, want %q", got, plaintext)
	}
}

func TestEncryptInvalidRecipient(t *testing.T) {
	if _, err := Encrypt([]byte("data"), "not-a-recipient"); err == nil {
		t.Fatal("expected error for invalid recipient string")
	}
}
