package jsoncodec

import (
	"bytes"
	"testing"
)

func TestMarshalUnmarshal(t *testing.T) {
	in := map[string]any{"message": "hello", "level": 30}

	data, err := Marshal(in)
	if err != nil {
		t.Fatal(err)
	}

	var out map[string]any
	if err := Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out["message"] != "hello" || out["level"] != float64(30) {
		t.Fatalf("round trip lost data: %#v", out)
	}
}

func TestEncodeAppendsNewline(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, map[string]string{"k": "v"}); err != nil {
		t.Fatal(err)
	}
	if buf.Bytes()[buf.Len()-1] != '\n' {
		t.Fatal("expected trailing newline")
	}

	var out map[string]string
	if err := Decode(&buf, &out); err != nil {
		t.Fatal(err)
	}
	if out["k"] != "v" {
		t.Fatalf("decode lost data: %#v", out)
	}
}
