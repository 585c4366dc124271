package asset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"strconv"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrCorruptFrame reports a frame that is too short or fails its
// checksum.
var ErrCorruptFrame = errors.New("asset: corrupt frame")

// frame layout: [len:4][crc:4][protobuf body], little-endian,
// CRC32-IEEE over the body.
const headerSize = 8

// Encode serializes an asset into a framed binary blob.
func Encode(a *Asset) ([]byte, error) {
	// IDs are 64-bit; structpb numbers are doubles, so the ID rides
	// as a decimal string to keep the full range.
	fields := map[string]any{
		"id":   strconv.FormatUint(a.ID, 10),
		"type": a.Type,
	}
	if a.Data != nil {
		fields["data"] = a.Data
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("asset: encode %d: %w", a.ID, err)
	}
	body, err := proto.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("asset: encode %d: %w", a.ID, err)
	}

	frame := make([]byte, headerSize+len(body))
	binary.LittleEndian.PutUint32(frame[0:4], uint32(len(body)))
	binary.LittleEndian.PutUint32(frame[4:8], crc32.ChecksumIEEE(body))
	copy(frame[headerSize:], body)
	return frame, nil
}

// Decode parses a framed blob back into an asset.
func Decode(frame []byte) (*Asset, error) {
	if len(frame) < headerSize {
		return nil, ErrCorruptFrame
	}
	size := binary.LittleEndian.Uint32(frame[0:4])
	body := frame[headerSize:]
	if uint32(len(body)) != size {
		return nil, ErrCorruptFrame
	}
	if crc32.ChecksumIEEE(body) != binary.LittleEndian.Uint32(frame[4:8]) {
		return nil, ErrCorruptFrame
	}

	var st structpb.Struct
	if err := proto.Unmarshal(body, &st); err != nil {
		return nil, fmt.Errorf("asset: decode: %w", err)
	}
	m := st.AsMap()

	idStr, _ := m["id"].(string)
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("asset: decode: bad id %q", idStr)
	}
	typ, _ := m["type"].(string)
	if typ == "" {
		return nil, errors.New("asset: decode: missing type")
	}

	a := &Asset{ID: id, Type: typ}
	if data, ok := m["data"].(map[string]any); ok {
		a.Data = data
	}
	return a, nil
}
