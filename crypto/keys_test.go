package crypto

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestAddressRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	addr := key.PubKey().Address()
	encoded := addr.String()
	if !strings.HasPrefix(encoded, string(AccountPrefix)+"1") {
		t.Fatalf("unexpected encoding %q", encoded)
	}
	raw, err := ParseAccount(encoded)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if raw != addr.Raw() {
		t.Fatalf("round trip mismatch")
	}
	if Format(raw) != encoded {
		t.Fatalf("format mismatch: %s != %s", Format(raw), encoded)
	}
}

func TestParseAccountRejectsForeignPrefix(t *testing.T) {
	foreign := NewAddress("other", bytes.Repeat([]byte{0x01}, AddressLength)).String()
	if _, err := ParseAccount(foreign); !errors.Is(err, ErrUnexpectedPrefix) {
		t.Fatalf("expected prefix error, got %v", err)
	}
	if _, err := ParseAccount("not-an-address"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestKeystoreRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	path := filepath.Join(t.TempDir(), "keys", "creator.json")
	if err := SaveToKeystoreWithParams(path, key, "hunter2", LightScrypt); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadFromKeystore(path, "hunter2")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(loaded.Bytes(), key.Bytes()) {
		t.Fatalf("loaded key differs")
	}
	if _, err := LoadFromKeystore(path, "wrong"); err == nil {
		t.Fatalf("expected wrong passphrase to fail")
	}
}
