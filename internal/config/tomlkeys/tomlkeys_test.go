package tomlkeys

import "testing"

func TestTableAndDottedKeysAreEquivalent(t *testing.T) {
	cases := []string{
		`[tail]
buffer-size = 4096
`,
		`tail.buffer-size = 4096
`,
	}
	for _, input := range cases {
		store, err := Decode([]byte(input))
		if err != nil {
			t.Fatalf("decode toml: %v", err)
		}
		value, ok := store.GetInt("tail.buffer-size")
		if !ok {
			t.Fatalf("expected tail.buffer-size value")
		}
		if value != 4096 {
			t.Fatalf("expected 4096, got %d", value)
		}
	}
}

func TestNormalizationHandlesUnderscoresAndCase(t *testing.T) {
	input := `[Tail]
BUFFER_SIZE = 123
`
	store, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("decode toml: %v", err)
	}
	value, ok := store.GetInt("tail.buffer-size")
	if !ok {
		t.Fatalf("expected normalized key to resolve")
	}
	if value != 123 {
		t.Fatalf("expected 123, got %d", value)
	}
}

func TestTypePreservation(t *testing.T) {
	input := `flag = true
count = 7
name = "hello"
`
	store, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("decode toml: %v", err)
	}
	flag, ok := store.GetBool("flag")
	if !ok || !flag {
		t.Fatalf("expected flag true")
	}
	count, ok := store.GetInt("count")
	if !ok || count != 7 {
		t.Fatalf("expected count 7, got %d", count)
	}
	name, ok := store.GetString("name")
	if !ok || name != "hello" {
		t.Fatalf("expected name hello, got %q", name)
	}
	if _, ok := store.GetString("count"); ok {
		t.Fatalf("expected count to not be a string")
	}
}

func TestYAMLFlattensLikeTOML(t *testing.T) {
	input := `tail:
  buffer_size: 512
notify:
  sink: stdout
  timeout-ms: 2500
`
	store, err := DecodeYAML([]byte(input))
	if err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	size, ok := store.GetInt("tail.buffer-size")
	if !ok || size != 512 {
		t.Fatalf("expected buffer size 512, got %d", size)
	}
	sink, ok := store.GetString("notify.sink")
	if !ok || sink != "stdout" {
		t.Fatalf("expected sink stdout, got %q", sink)
	}
	keys := store.Keys()
	expected := []string{"notify.sink", "notify.timeout-ms", "tail.buffer-size"}
	if len(keys) != len(expected) {
		t.Fatalf("expected keys %v, got %v", expected, keys)
	}
	for index := range expected {
		if keys[index] != expected[index] {
			t.Fatalf("expected keys %v, got %v", expected, keys)
		}
	}
}

func TestInvalidYAML(t *testing.T) {
	if _, err := DecodeYAML([]byte("tail: [unclosed")); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestArraysArePreservedAsValues(t *testing.T) {
	input := `files = ["a.log", "b.log"]
`
	store, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("decode toml: %v", err)
	}
	value, ok := store.flat["files"]
	if !ok {
		t.Fatalf("expected files key")
	}
	items, ok := value.([]any)
	if !ok {
		t.Fatalf("expected files to be []any, got %T", value)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 files, got %d", len(items))
	}
}
