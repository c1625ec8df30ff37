package qrtoken

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"
)

func testPayload() Payload {
	return Payload{
		RecordID:      42,
		StudentNumber: "STU001",
		DisplayName:   "John Doe",
		IssuedAt:      time.Now().UnixMilli(),
		SchemaVersion: SchemaVersion,
	}
}

func TestNewCodecRequiresSecret(t *testing.T) {
	if _, err := NewCodec(""); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("empty secret: want ErrMissingSecret, got %v", err)
	}
	if _, err := NewCodec("   "); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("blank secret: want ErrMissingSecret, got %v", err)
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	codec, err := NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	original := testPayload()
	token, err := codec.Seal(original)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	opened, err := codec.Open(token)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if opened != original {
		t.Fatalf("round trip mismatch: got %+v, want %+v", opened, original)
	}
}

func TestSealProducesUniqueTokens(t *testing.T) {
	codec, err := NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	payload := testPayload()
	first, err := codec.Seal(payload)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	second, err := codec.Seal(payload)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	if first == second {
		t.Fatal("two Seal calls with the same payload produced identical tokens")
	}
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	codec, err := NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	token, err := codec.Seal(testPayload())
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	parts := strings.SplitN(token, ":", 2)
	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode ciphertext: %v", err)
	}

	// Flip one byte at every position; every variant must be rejected.
	for i := range ciphertext {
		mutated := make([]byte, len(ciphertext))
		copy(mutated, ciphertext)
		mutated[i] ^= 0x01

		tampered := parts[0] + ":" + hex.EncodeToString(mutated)
		if _, err := codec.Open(tampered); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("tampered byte %d: want ErrInvalidToken, got %v", i, err)
		}
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	codec, err := NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	inputs := []string{
		"",
		"not-a-token",
		"deadbeef",                        // no separator
		":",                               // empty halves
		"zz:zz",                           // not hex
		"deadbeef:cafe",                   // nonce too short
		strings.Repeat("ab", 16) + ":",    // missing ciphertext
		strings.Repeat("ab", 16) + ":ab",  // ciphertext shorter than tag
		strings.Repeat("ab", 16) + ":abc", // odd-length hex
	}

	for _, input := range inputs {
		if _, err := codec.Open(input); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Open(%q): want ErrInvalidToken, got %v", input, err)
		}
	}
}

func TestOpenRejectsTokenFromDifferentKey(t *testing.T) {
	issuer, err := NewCodec("secret-one")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	verifier, err := NewCodec("secret-two")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	token, err := issuer.Seal(testPayload())
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	if _, err := verifier.Open(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("cross-key open: want ErrInvalidToken, got %v", err)
	}
}

func TestOpenRejectsMissingRequiredFields(t *testing.T) {
	codec, err := NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	cases := []Payload{
		{StudentNumber: "STU001", SchemaVersion: SchemaVersion},              // no record ID
		{RecordID: 1, SchemaVersion: SchemaVersion},                          // no student number
		{RecordID: 1, StudentNumber: "STU001"},                               // no schema version
		{RecordID: -5, StudentNumber: "STU001", SchemaVersion: SchemaVersion}, // negative record ID
	}

	for _, payload := range cases {
		token, err := codec.Seal(payload)
		if err != nil {
			t.Fatalf("Seal(%+v): %v", payload, err)
		}
		if _, err := codec.Open(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Open of payload %+v: want ErrInvalidToken, got %v", payload, err)
		}
	}
}
