package core

import (
	"context"

	"github.com/nboxhq/nbox/internal/nbox"
)

// Redacted is what secure values display as when decryption was not requested
const Redacted = "********"

// Decryptor requests server-side decryption of a secure entry
type Decryptor interface {
	GetSecretValue(ctx context.Context, key string) (string, error)
}

// DisplayEntry is an entry prepared for rendering. Secure values are either
// decrypted plaintext (when explicitly requested) or the redaction marker;
// the stored ciphertext reference is never shown.
type DisplayEntry struct {
	Key          string `json:"key"`
	Value        string `json:"value"`
	Secure       bool   `json:"secure"`
	DecryptError string `json:"decrypt_error,omitempty"`
}

// Reveal resolves the displayable value of an entry. Non-secure values pass
// through unchanged. Secure values require decrypt=true to be fetched in
// plaintext; otherwise the redaction marker is returned. A decryption
// failure is surfaced on the entry rather than aborting a multi-entry read.
func Reveal(ctx context.Context, d Decryptor, entry nbox.Entry, decrypt bool) DisplayEntry {
	if !entry.Secure {
		return DisplayEntry{Key: entry.Key, Value: entry.Value}
	}

	if !decrypt {
		return DisplayEntry{Key: entry.Key, Value: Redacted, Secure: true}
	}

	plaintext, err := d.GetSecretValue(ctx, entry.Key)
	if err != nil {
		return DisplayEntry{
			Key:          entry.Key,
			Value:        Redacted,
			Secure:       true,
			DecryptError: err.Error(),
		}
	}

	return DisplayEntry{Key: entry.Key, Value: plaintext, Secure: true}
}
