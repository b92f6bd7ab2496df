package object

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/zlib"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		objType ObjectType
		payload []byte
	}{
		{TypeBlob, []byte("hello")},
		{TypeBlob, nil},
		{TypeBlob, []byte{0, 1, 2, 0, 255}},
		{TypeTree, nil},
		{TypeCommit, []byte("tree abc\nauthor x\ntimestamp 0\n\nmsg")},
	}
	for _, tc := range cases {
		raw := Encode(tc.objType, tc.payload)
		gotType, gotPayload, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode(%s, %d bytes): %v", tc.objType, len(tc.payload), err)
		}
		if gotType != tc.objType {
			t.Errorf("type: got %q, want %q", gotType, tc.objType)
		}
		if !bytes.Equal(gotPayload, tc.payload) {
			t.Errorf("payload: got %q, want %q", gotPayload, tc.payload)
		}
	}
}

func TestEncodeCompresses(t *testing.T) {
	payload := bytes.Repeat([]byte("abcdefgh"), 1024)
	raw := Encode(TypeBlob, payload)
	if len(raw) >= len(payload) {
		t.Errorf("repetitive payload did not shrink: %d -> %d", len(payload), len(raw))
	}
}

func TestDecodeBadZlibStream(t *testing.T) {
	_, _, err := Decode([]byte("not a zlib stream"))
	if !errors.Is(err, ErrCorruptObject) {
		t.Fatalf("err = %v, want ErrCorruptObject", err)
	}
}

func TestDecodeMissingNul(t *testing.T) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write([]byte("blob 5hello"))
	zw.Close()

	_, _, err := Decode(buf.Bytes())
	if !errors.Is(err, ErrCorruptObject) {
		t.Fatalf("err = %v, want ErrCorruptObject", err)
	}
}

func TestDecodeLengthMismatch(t *testing.T) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write([]byte("blob 99\x00hello"))
	zw.Close()

	_, _, err := Decode(buf.Bytes())
	if !errors.Is(err, ErrCorruptObject) {
		t.Fatalf("err = %v, want ErrCorruptObject", err)
	}
}

func TestDecodeBadLength(t *testing.T) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write([]byte("blob five\x00hello"))
	zw.Close()

	_, _, err := Decode(buf.Bytes())
	if !errors.Is(err, ErrCorruptObject) {
		t.Fatalf("err = %v, want ErrCorruptObject", err)
	}
}

func TestEncodeLevelAffectsBytesNotHash(t *testing.T) {
	payload := bytes.Repeat([]byte("grit"), 512)

	fast, err := EncodeLevel(TypeBlob, payload, zlib.BestSpeed)
	if err != nil {
		t.Fatalf("EncodeLevel(BestSpeed): %v", err)
	}
	small, err := EncodeLevel(TypeBlob, payload, zlib.BestCompression)
	if err != nil {
		t.Fatalf("EncodeLevel(BestCompression): %v", err)
	}

	for _, raw := range [][]byte{fast, small} {
		objType, got, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if objType != TypeBlob || !bytes.Equal(got, payload) {
			t.Error("payload did not survive the level change")
		}
	}
}
