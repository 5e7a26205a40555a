// Package proto implements the danmaku push-channel's protobuf-shaped
// messages by hand, the same way the upstream client avoids a protoc
// dependency: a small varint/tag wire codec plus explicit Marshal/Unmarshal
// methods per message.
package proto

import "fmt"

const (
	wireVarint  = 0
	wireFixed64 = 1
	wireBytes   = 2
	wireFixed32 = 5
)

// appendVarint appends v as a base-128 varint.
func appendVarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

func appendTag(buf []byte, field int, wireType int) []byte {
	return appendVarint(buf, uint64(field<<3|wireType))
}

func appendInt64(buf []byte, field int, v int64) []byte {
	if v == 0 {
		return buf
	}
	buf = appendTag(buf, field, wireVarint)
	return appendVarint(buf, uint64(v))
}

func appendInt32(buf []byte, field int, v int32) []byte {
	return appendInt64(buf, field, int64(v))
}

func appendUint32(buf []byte, field int, v uint32) []byte {
	if v == 0 {
		return buf
	}
	buf = appendTag(buf, field, wireVarint)
	return appendVarint(buf, uint64(v))
}

func appendBool(buf []byte, field int, v bool) []byte {
	if !v {
		return buf
	}
	return appendInt64(buf, field, 1)
}

func appendBytes(buf []byte, field int, v []byte) []byte {
	if len(v) == 0 {
		return buf
	}
	buf = appendTag(buf, field, wireBytes)
	buf = appendVarint(buf, uint64(len(v)))
	return append(buf, v...)
}

func appendString(buf []byte, field int, v string) []byte {
	if v == "" {
		return buf
	}
	return appendBytes(buf, field, []byte(v))
}

func appendMessage(buf []byte, field int, m []byte) []byte {
	if m == nil {
		return buf
	}
	return appendBytes(buf, field, m)
}

// wireField is one decoded (tag, value) pair from parseFields.
type wireField struct {
	num      int
	wireType int
	varint   uint64
	bytes    []byte
}

// parseFields walks the wire-encoded data and returns every field found,
// in order, preserving repeats so callers can collect repeated fields.
func parseFields(data []byte) ([]wireField, error) {
	var fields []wireField
	pos := 0
	for pos < len(data) {
		tag, n := decodeVarint(data[pos:])
		if n == 0 {
			return nil, fmt.Errorf("proto: truncated tag at offset %d", pos)
		}
		pos += n
		fieldNum := int(tag >> 3)
		wireType := int(tag & 0x7)

		switch wireType {
		case wireVarint:
			v, n := decodeVarint(data[pos:])
			if n == 0 {
				return nil, fmt.Errorf("proto: truncated varint at offset %d", pos)
			}
			pos += n
			fields = append(fields, wireField{num: fieldNum, wireType: wireType, varint: v})
		case wireFixed64:
			if pos+8 > len(data) {
				return nil, fmt.Errorf("proto: truncated fixed64 at offset %d", pos)
			}
			fields = append(fields, wireField{num: fieldNum, wireType: wireType, bytes: data[pos : pos+8]})
			pos += 8
		case wireFixed32:
			if pos+4 > len(data) {
				return nil, fmt.Errorf("proto: truncated fixed32 at offset %d", pos)
			}
			fields = append(fields, wireField{num: fieldNum, wireType: wireType, bytes: data[pos : pos+4]})
			pos += 4
		case wireBytes:
			length, n := decodeVarint(data[pos:])
			if n == 0 {
				return nil, fmt.Errorf("proto: truncated length at offset %d", pos)
			}
			pos += n
			if pos+int(length) > len(data) {
				return nil, fmt.Errorf("proto: truncated bytes field at offset %d", pos)
			}
			fields = append(fields, wireField{num: fieldNum, wireType: wireType, bytes: data[pos : pos+int(length)]})
			pos += int(length)
		default:
			return nil, fmt.Errorf("proto: unsupported wire type %d", wireType)
		}
	}
	return fields, nil
}

func decodeVarint(data []byte) (uint64, int) {
	var v uint64
	var shift uint
	for i, b := range data {
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, i + 1
		}
		shift += 7
		if shift >= 64 {
			return 0, 0
		}
	}
	return 0, 0
}
