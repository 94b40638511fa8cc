package charset

import (
	"errors"
	"testing"
)

func TestDefaultDecoderAcceptsUTF8(t *testing.T) {
	decoder, err := New("")
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	if decoder.Name() != "utf-8" {
		t.Fatalf("expected utf-8, got %q", decoder.Name())
	}
	text, err := decoder.Decode([]byte("grüße"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if text != "grüße" {
		t.Fatalf("expected grüße, got %q", text)
	}
}

func TestDefaultDecoderRejectsInvalidBytes(t *testing.T) {
	decoder, err := New("utf-8")
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	if _, err := decoder.Decode([]byte{0xff, 0xfe, 'a'}); !errors.Is(err, ErrInvalidText) {
		t.Fatalf("expected ErrInvalidText, got %v", err)
	}
	if _, err := decoder.Decode([]byte("a\x00b")); !errors.Is(err, ErrInvalidText) {
		t.Fatalf("expected ErrInvalidText for NUL, got %v", err)
	}
}

func TestLatin1Decoder(t *testing.T) {
	decoder, err := New("latin1")
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	text, err := decoder.Decode([]byte{'c', 0xe9})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if text != "cé" {
		t.Fatalf("expected cé, got %q", text)
	}
}

func TestUnknownCharset(t *testing.T) {
	if _, err := New("klingon-8"); err == nil {
		t.Fatalf("expected error for unknown charset")
	}
}

func TestNilDecoderValidatesUTF8(t *testing.T) {
	var decoder *Decoder
	if _, err := decoder.Decode([]byte{0xc3}); !errors.Is(err, ErrInvalidText) {
		t.Fatalf("expected ErrInvalidText, got %v", err)
	}
}
