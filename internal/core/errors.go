package core

import "fmt"

// Kind classifies a protocol-level failure so callers can branch on it
// without string-matching error messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidToken
	KindInvalidUID
	KindEmptyLiveID
	KindNoLiveInfo
	KindTransportConnect
	KindTransportRead
	KindTransportWrite
	KindTransportClose
	KindPeerClosed
	KindInvalidKeyIvLength
	KindDecryptAes
	KindCipherTextTooShort
	KindDecodeBase64
	KindEncodeProto
	KindDecodeProto
	KindProtoDataLength
	KindTryFromSlice
	KindNoSessionKey
	KindRegisterError
	KindIndexOutOfRange
	KindGzip
)

func (k Kind) String() string {
	switch k {
	case KindInvalidToken:
		return "invalid_token"
	case KindInvalidUID:
		return "invalid_uid"
	case KindEmptyLiveID:
		return "empty_live_id"
	case KindNoLiveInfo:
		return "no_live_info"
	case KindTransportConnect:
		return "transport_connect"
	case KindTransportRead:
		return "transport_read"
	case KindTransportWrite:
		return "transport_write"
	case KindTransportClose:
		return "transport_close"
	case KindPeerClosed:
		return "peer_closed"
	case KindInvalidKeyIvLength:
		return "invalid_key_iv_length"
	case KindDecryptAes:
		return "decrypt_aes_error"
	case KindCipherTextTooShort:
		return "ciphertext_too_short"
	case KindDecodeBase64:
		return "decode_base64_error"
	case KindEncodeProto:
		return "encode_proto_error"
	case KindDecodeProto:
		return "decode_proto_error"
	case KindProtoDataLength:
		return "proto_data_length_error"
	case KindTryFromSlice:
		return "try_from_slice_error"
	case KindNoSessionKey:
		return "no_session_key"
	case KindRegisterError:
		return "register_error"
	case KindIndexOutOfRange:
		return "index_out_of_range"
	case KindGzip:
		return "gzip_error"
	default:
		return "unknown"
	}
}

// Error is the error type every package in the danmaku core returns.
// It is always fatal to the session when it surfaces from Client.Next.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func wrapf(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}
