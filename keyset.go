package main

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tink-crypto/tink-go/v2/insecurecleartextkeyset"
	"github.com/tink-crypto/tink-go/v2/keyset"
	"github.com/tink-crypto/tink-go/v2/streamingaead"
)

const (
	keysetSegmentSize = 1 << 20 // 1MB
	hkdfHashSHA256    = 3
	keysetProbe       = "pbkdf2 keyset probe"
)

// keysetKeySize picks the AES key size a derived key of n bytes can fill
func keysetKeySize(n int) (int, error) {
	switch {
	case n >= 32:
		return 32, nil
	case n >= 16:
		return 16, nil
	}
	return 0, fmt.Errorf("derived key of %d bytes is too short for an AES key", n)
}

// keysetFromDerivedKey wraps a derived key as a Tink AES-GCM-HKDF streaming keyset
func keysetFromDerivedKey(derivedKey []byte) (*keyset.Handle, error) {
	size, err := keysetKeySize(len(derivedKey))
	if err != nil {
		return nil, err
	}

	keyValue := streamingKeyValue(derivedKey[:size], uint32(size))
	defer zeroBytes(keyValue)

	keysetJSON := fmt.Sprintf(`{
		"primaryKeyId": 1,
		"key": [{
			"keyData": {
				"typeUrl": "type.googleapis.com/google.crypto.tink.AesGcmHkdfStreamingKey",
				"keyMaterialType": "SYMMETRIC",
				"value": "%s"
			},
			"outputPrefixType": "RAW",
			"keyId": 1,
			"status": "ENABLED"
		}]
	}`, base64.StdEncoding.EncodeToString(keyValue))

	return insecurecleartextkeyset.Read(keyset.NewJSONReader(strings.NewReader(keysetJSON)))
}

// streamingKeyValue builds the protobuf encoding of an AesGcmHkdfStreamingKey
func streamingKeyValue(key []byte, derivedKeySize uint32) []byte {
	// fields 1-3: ciphertext_segment_size, derived_key_size, hkdf_hash_type
	params := []byte{0x08}
	params = append(params, encodeVarint(keysetSegmentSize)...)
	params = append(params, 0x10)
	params = append(params, encodeVarint(derivedKeySize)...)
	params = append(params, 0x18)
	params = append(params, encodeVarint(hkdfHashSHA256)...)

	result := []byte{0x08, 0x00} // version 0
	result = append(result, 0x12, byte(len(params)))
	result = append(result, params...)
	result = append(result, 0x1a, byte(len(key)))
	result = append(result, key...)
	return result
}

func encodeVarint(v uint32) []byte {
	var buf []byte
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// verifyKeyset seals and opens a probe message with the keyset
func verifyKeyset(h *keyset.Handle) error {
	primitive, err := streamingaead.New(h)
	if err != nil {
		return fmt.Errorf("failed to create streaming AEAD: %w", err)
	}

	var sealed bytes.Buffer
	w, err := primitive.NewEncryptingWriter(&sealed, []byte{})
	if err != nil {
		return fmt.Errorf("failed to create encrypting writer: %w", err)
	}
	if _, err := io.WriteString(w, keysetProbe); err != nil {
		return fmt.Errorf("encryption failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize encryption: %w", err)
	}

	r, err := primitive.NewDecryptingReader(&sealed, []byte{})
	if err != nil {
		return fmt.Errorf("failed to create decrypting reader: %w", err)
	}
	opened, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("decryption failed: %w", err)
	}
	if string(opened) != keysetProbe {
		return errors.New("keyset probe mismatch")
	}
	return nil
}

// exportKeyset writes the derived key as a cleartext JSON keyset to w
func exportKeyset(w io.Writer, derivedKey []byte) error {
	h, err := keysetFromDerivedKey(derivedKey)
	if err != nil {
		return fmt.Errorf("failed to create keyset: %w", err)
	}
	if err := verifyKeyset(h); err != nil {
		return err
	}
	if err := insecurecleartextkeyset.Write(h, keyset.NewJSONWriter(w)); err != nil {
		return fmt.Errorf("failed to write keyset: %w", err)
	}
	return nil
}

// exportKeysetFile writes the keyset to path, readable by the owner only
func exportKeysetFile(path string, derivedKey []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create keyset file: %w", err)
	}
	if err := exportKeyset(f, derivedKey); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
