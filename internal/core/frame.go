// danmaku-go - AcFun live push-channel client
// Copyright (c) 2026 Riverlink
// Licensed under MIT License
// https://github.com/riverlink/danmaku-go

package core

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	dproto "github.com/riverlink/danmaku-go/internal/proto"
)

const (
	frameMagic      uint32 = 0xABCD0001
	framePrefixSize        = 12 // magic(4) + header_len(4) + body_len(4)
	aesBlockSize           = 16
)

// encodeFrame serializes header+plaintext into one binary wire frame,
// encrypting the body per header.EncryptionMode. header.DecodedPayloadLen
// is set here from len(plaintext) before the header is marshaled.
func encodeFrame(header *dproto.PacketHeader, plaintext []byte, key []byte) ([]byte, error) {
	header.DecodedPayloadLen = uint32(len(plaintext))

	var body []byte
	switch header.EncryptionMode {
	case dproto.EncryptionNone:
		body = plaintext
	case dproto.EncryptionServiceToken, dproto.EncryptionSessionKey:
		encrypted, err := encryptCBC(key, plaintext)
		if err != nil {
			return nil, err
		}
		body = encrypted
	default:
		return nil, newError(KindEncodeProto, "unknown encryption mode", nil)
	}

	headerBytes := header.Marshal()

	frame := make([]byte, 0, framePrefixSize+len(headerBytes)+len(body))
	var prefix [framePrefixSize]byte
	binary.BigEndian.PutUint32(prefix[0:4], frameMagic)
	binary.BigEndian.PutUint32(prefix[4:8], uint32(len(headerBytes)))
	binary.BigEndian.PutUint32(prefix[8:12], uint32(len(body)))
	frame = append(frame, prefix[:]...)
	frame = append(frame, headerBytes...)
	frame = append(frame, body...)
	return frame, nil
}

// decodedFrame is the result of decodeFrame: the parsed header plus the
// decrypted DownstreamPayload.
type decodedFrame struct {
	Header  *dproto.PacketHeader
	Payload *dproto.DownstreamPayload
}

// decodeFrame parses one whole binary message per the wire layout in
// core/frame.go's sibling encodeFrame. sessionKey may be nil; it is only
// needed when the header reports SessionKey encryption.
func decodeFrame(msg []byte, securityKey []byte, sessionKey []byte) (*decodedFrame, error) {
	if len(msg) < framePrefixSize {
		return nil, newError(KindDecodeProto, "frame shorter than prefix", nil)
	}
	magic := binary.BigEndian.Uint32(msg[0:4])
	if magic != frameMagic {
		return nil, newError(KindDecodeProto, fmt.Sprintf("bad magic %#x", magic), nil)
	}
	headerLen := binary.BigEndian.Uint32(msg[4:8])
	bodyLen := binary.BigEndian.Uint32(msg[8:12])
	if len(msg) < framePrefixSize+int(headerLen)+int(bodyLen) {
		return nil, newError(KindDecodeProto, "frame shorter than declared lengths", nil)
	}

	headerBytes := msg[framePrefixSize : framePrefixSize+int(headerLen)]
	body := msg[framePrefixSize+int(headerLen) : framePrefixSize+int(headerLen)+int(bodyLen)]

	header, err := dproto.UnmarshalPacketHeader(headerBytes)
	if err != nil {
		return nil, wrapf(KindDecodeProto, err, "unmarshal header")
	}

	var plaintext []byte
	switch header.EncryptionMode {
	case dproto.EncryptionNone:
		plaintext = body
	case dproto.EncryptionServiceToken:
		plaintext, err = decryptCBC(securityKey, body)
		if err != nil {
			return nil, err
		}
	case dproto.EncryptionSessionKey:
		if len(sessionKey) == 0 {
			return nil, newError(KindNoSessionKey, "no session key to decrypt SessionKey-mode body", nil)
		}
		plaintext, err = decryptCBC(sessionKey, body)
		if err != nil {
			return nil, err
		}
	default:
		return nil, newError(KindDecodeProto, "unknown encryption mode", nil)
	}

	if uint32(len(plaintext)) != header.DecodedPayloadLen {
		return nil, wrapf(KindProtoDataLength, nil, "decoded_payload_len mismatch: header=%d actual=%d",
			header.DecodedPayloadLen, len(plaintext))
	}

	payload, err := dproto.UnmarshalDownstreamPayload(plaintext)
	if err != nil {
		return nil, wrapf(KindDecodeProto, err, "unmarshal downstream payload")
	}

	return &decodedFrame{Header: header, Payload: payload}, nil
}

func decodeSecurityKey(b64 string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, wrapf(KindDecodeBase64, err, "decode security_key")
	}
	if len(key) != aesBlockSize {
		return nil, newError(KindInvalidKeyIvLength, fmt.Sprintf("security key must be %d bytes, got %d", aesBlockSize, len(key)), nil)
	}
	return key, nil
}

// encryptCBC implements AES-128-CBC with PKCS#7 padding and a fresh
// per-frame random IV prefixed onto the ciphertext.
func encryptCBC(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, wrapf(KindInvalidKeyIvLength, err, "new aes cipher")
	}

	padded := pkcs7Pad(plaintext, aesBlockSize)

	iv := make([]byte, aesBlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, wrapf(KindDecryptAes, err, "generate iv")
	}

	ciphertext := make([]byte, len(padded))
	cbc := cipher.NewCBCEncrypter(block, iv)
	cbc.CryptBlocks(ciphertext, padded)

	out := make([]byte, 0, len(iv)+len(ciphertext))
	out = append(out, iv...)
	out = append(out, ciphertext...)
	return out, nil
}

func decryptCBC(key, body []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, wrapf(KindInvalidKeyIvLength, err, "new aes cipher")
	}
	if len(body) <= aesBlockSize {
		return nil, newError(KindCipherTextTooShort, fmt.Sprintf("body length %d <= block size", len(body)), nil)
	}
	iv := body[:aesBlockSize]
	ciphertext := body[aesBlockSize:]
	if len(ciphertext)%aesBlockSize != 0 {
		return nil, newError(KindDecryptAes, "ciphertext not a multiple of block size", nil)
	}

	plainPadded := make([]byte, len(ciphertext))
	cbc := cipher.NewCBCDecrypter(block, iv)
	cbc.CryptBlocks(plainPadded, ciphertext)

	return pkcs7Unpad(plainPadded)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, newError(KindDecryptAes, "empty padded buffer", nil)
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > aesBlockSize || padLen > len(data) {
		return nil, newError(KindDecryptAes, "invalid pkcs7 padding", nil)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, newError(KindDecryptAes, "invalid pkcs7 padding", nil)
		}
	}
	return data[:len(data)-padLen], nil
}
