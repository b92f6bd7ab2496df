package object

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// ErrCorruptObject indicates stored object bytes that cannot be decoded:
// a bad compression stream, a missing header separator, or a payload whose
// length disagrees with the declared length.
var ErrCorruptObject = errors.New("corrupt object")

// Encode produces the on-disk form of an object: the envelope
// "type len\0payload" compressed with zlib at the default level. Encoding a
// valid in-memory object cannot fail.
func Encode(objType ObjectType, data []byte) []byte {
	out, err := EncodeLevel(objType, data, zlib.DefaultCompression)
	if err != nil {
		// DefaultCompression is always a valid level.
		panic(fmt.Sprintf("object encode: %v", err))
	}
	return out
}

// EncodeLevel is Encode with an explicit zlib compression level.
func EncodeLevel(objType ObjectType, data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("object encode: %w", err)
	}
	fmt.Fprintf(zw, "%s %d\x00", objType, len(data))
	zw.Write(data)
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("object encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode: it decompresses raw, splits the envelope at the
// first NUL, and returns the object type and the exact original payload.
// Any malformed input fails with an error wrapping ErrCorruptObject.
func Decode(raw []byte) (ObjectType, []byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return "", nil, fmt.Errorf("%w: bad zlib stream: %v", ErrCorruptObject, err)
	}
	defer zr.Close()

	plain, err := io.ReadAll(zr)
	if err != nil {
		return "", nil, fmt.Errorf("%w: bad zlib stream: %v", ErrCorruptObject, err)
	}

	nulIdx := bytes.IndexByte(plain, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("%w: no NUL separator", ErrCorruptObject)
	}
	header := string(plain[:nulIdx])
	payload := plain[nulIdx+1:]

	kind, lenStr, ok := strings.Cut(header, " ")
	if !ok {
		return "", nil, fmt.Errorf("%w: invalid header %q", ErrCorruptObject, header)
	}
	length, err := strconv.Atoi(lenStr)
	if err != nil {
		return "", nil, fmt.Errorf("%w: invalid length %q", ErrCorruptObject, lenStr)
	}
	if len(payload) != length {
		return "", nil, fmt.Errorf("%w: length mismatch (header=%d, actual=%d)", ErrCorruptObject, length, len(payload))
	}

	return ObjectType(kind), payload, nil
}
