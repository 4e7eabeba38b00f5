// Package export encrypts account-data exports with age, grounded on the
// teacher's config/secure.go secureConfigAge: parse an age recipient/identity
// once, stream plaintext through age.Encrypt. The teacher encrypts a
// DB-backed config blob to a locally held identity for its own later
// decryption; this package instead encrypts a one-off JSON export to a
// recipient public key the account holder supplies, so only they can open
// it.
package export

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
)

// Encrypt encrypts plaintext to recipientPublicKey (an age1... X25519
// recipient string) and returns the age ciphertext.
func Encrypt(plaintext []byte, recipientPublicKey string) ([]byte, error) {
	recipient, err := age.ParseX25519Recipient(recipientPublicKey)
	if err != nil {
		return nil, fmt.Errorf("export: parse recipient: %w", err)
	}

	out := &bytes.Buffer{}
	w, err := age.Encrypt(out, recipient)
	if err != nil {
		return nil, fmt.Errorf("export: create encryption writer: %w", err)
	}
	if _, err := io.Copy(w, bytes.NewReader(plaintext)); err != nil {
		return nil, fmt.Errorf("export: write plaintext: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("export: close encryption writer: %w", err)
	}
	return out.Bytes(), nil
}
