package core

import (
	"bytes"
	"io"
	"sort"

	"github.com/klauspost/compress/gzip"

	dproto "github.com/riverlink/danmaku-go/internal/proto"
)

// ActionSignal is a tagged union over every known ActionSignal leaf
// protobuf plus an Unknown fallback for forward compatibility.
type ActionSignal struct {
	Comment      *dproto.CommonActionSignalComment
	Like         *dproto.CommonActionSignalLike
	EnterRoom    *dproto.CommonActionSignalEnterRoom
	Follow       *dproto.CommonActionSignalFollowAuthor
	ThrowBanana  *dproto.CommonActionSignalThrowBanana
	Gift         *dproto.CommonActionSignalGift
	RichText     *dproto.CommonActionSignalRichText
	JoinClub     *dproto.CommonActionSignalJoinClub
	Unknown      []byte
}

func (a ActionSignal) sendTimeMs() int64 {
	switch {
	case a.Comment != nil:
		return a.Comment.SendTimeMs
	case a.Like != nil:
		return a.Like.SendTimeMs
	case a.EnterRoom != nil:
		return a.EnterRoom.SendTimeMs
	case a.Follow != nil:
		return a.Follow.SendTimeMs
	case a.ThrowBanana != nil:
		return a.ThrowBanana.SendTimeMs
	case a.Gift != nil:
		return a.Gift.SendTimeMs
	case a.RichText != nil:
		return a.RichText.SendTimeMs
	case a.JoinClub != nil:
		return a.JoinClub.JoinTimeMs
	default:
		return 0
	}
}

// StateSignal is a tagged union over every known StateSignal leaf protobuf.
type StateSignal struct {
	DisplayInfo       *dproto.CommonStateSignalDisplayInfo
	TopUser           *dproto.CommonStateSignalTopUser
	RecentComment     *dproto.CommonStateSignalRecentComment
	RedpackList       *dproto.CommonStateSignalRedpackList
	ChatCallState     *dproto.ChatCallStateSignal
	AuthorChatState   *dproto.AuthorChatStateSignal
	AuthorChatSound   *dproto.AuthorChatSoundConfigStateSignal
	LiveState         *dproto.CommonStateSignalCurrentRedpackList
	Unknown           []byte
}

// NotifySignal is a tagged union over every known NotifySignal leaf protobuf.
type NotifySignal struct {
	KickedOut       *dproto.CommonNotifySignalKickedOut
	ViolationAlert  *dproto.CommonNotifySignalViolationAlert
	LiveManagerState *dproto.LiveManagerStateNotifySignal
	Unknown         []byte
}

// Signals is the decoded result of one Push.Message: exactly one of the
// three batch kinds is non-nil.
type Signals struct {
	Actions  []ActionSignal
	States   []StateSignal
	Notifies []NotifySignal
}

// decodeSignals implements spec 4.B: gunzip when flagged, then dispatch by
// message_type into the appropriate tagged-union batch.
func decodeSignals(msg *dproto.ZtLiveScMessage) (Signals, error) {
	payload := msg.Payload
	if msg.CompressionType == dproto.CompressionGzip {
		unzipped, err := gunzip(payload)
		if err != nil {
			return Signals{}, wrapf(KindGzip, err, "gunzip push payload")
		}
		payload = unzipped
	}

	switch msg.MessageType {
	case "ZtLiveScActionSignal":
		items, err := dproto.ActionSignalItems(payload)
		if err != nil {
			return Signals{}, wrapf(KindDecodeProto, err, "decode action signal envelope")
		}
		batch := make([]ActionSignal, 0, len(items))
		for _, item := range items {
			batch = append(batch, decodeActionSignal(item.SignalType, item.Payload))
		}
		sort.SliceStable(batch, func(i, j int) bool {
			return batch[i].sendTimeMs() < batch[j].sendTimeMs()
		})
		return Signals{Actions: batch}, nil

	case "ZtLiveScStateSignal":
		items, err := dproto.StateSignalItems(payload)
		if err != nil {
			return Signals{}, wrapf(KindDecodeProto, err, "decode state signal envelope")
		}
		batch := make([]StateSignal, 0, len(items))
		for _, item := range items {
			batch = append(batch, decodeStateSignal(item.SignalType, item.Payload))
		}
		return Signals{States: batch}, nil

	case "ZtLiveScNotifySignal":
		items, err := dproto.NotifySignalItems(payload)
		if err != nil {
			return Signals{}, wrapf(KindDecodeProto, err, "decode notify signal envelope")
		}
		batch := make([]NotifySignal, 0, len(items))
		for _, item := range items {
			batch = append(batch, decodeNotifySignal(item.SignalType, item.Payload))
		}
		return Signals{Notifies: batch}, nil

	default:
		return Signals{}, newError(KindDecodeProto, "unexpected signal message_type: "+msg.MessageType, nil)
	}
}

func decodeActionSignal(signalType string, payload []byte) ActionSignal {
	switch signalType {
	case "CommonActionSignalComment":
		if v, err := dproto.UnmarshalCommonActionSignalComment(payload); err == nil {
			return ActionSignal{Comment: v}
		}
	case "CommonActionSignalLike":
		if v, err := dproto.UnmarshalCommonActionSignalLike(payload); err == nil {
			return ActionSignal{Like: v}
		}
	case "CommonActionSignalEnterRoom":
		if v, err := dproto.UnmarshalCommonActionSignalEnterRoom(payload); err == nil {
			return ActionSignal{EnterRoom: v}
		}
	case "CommonActionSignalFollowAuthor":
		if v, err := dproto.UnmarshalCommonActionSignalFollowAuthor(payload); err == nil {
			return ActionSignal{Follow: v}
		}
	case "CommonActionSignalThrowBanana":
		if v, err := dproto.UnmarshalCommonActionSignalThrowBanana(payload); err == nil {
			return ActionSignal{ThrowBanana: v}
		}
	case "CommonActionSignalGift":
		if v, err := dproto.UnmarshalCommonActionSignalGift(payload); err == nil {
			return ActionSignal{Gift: v}
		}
	case "CommonActionSignalRichText":
		if v, err := dproto.UnmarshalCommonActionSignalRichText(payload); err == nil {
			return ActionSignal{RichText: v}
		}
	case "CommonActionSignalJoinClub":
		if v, err := dproto.UnmarshalCommonActionSignalJoinClub(payload); err == nil {
			return ActionSignal{JoinClub: v}
		}
	}
	return ActionSignal{Unknown: payload}
}

func decodeStateSignal(signalType string, payload []byte) StateSignal {
	switch signalType {
	case "CommonStateSignalDisplayInfo":
		if v, err := dproto.UnmarshalCommonStateSignalDisplayInfo(payload); err == nil {
			return StateSignal{DisplayInfo: v}
		}
	case "CommonStateSignalTopUser":
		if v, err := dproto.UnmarshalCommonStateSignalTopUser(payload); err == nil {
			return StateSignal{TopUser: v}
		}
	case "CommonStateSignalRecentComment":
		if v, err := dproto.UnmarshalCommonStateSignalRecentComment(payload); err == nil {
			return StateSignal{RecentComment: v}
		}
	case "CommonStateSignalRedpackList":
		if v, err := dproto.UnmarshalCommonStateSignalRedpackList(payload); err == nil {
			return StateSignal{RedpackList: v}
		}
	case "ChatCallStateSignal":
		if v, err := dproto.UnmarshalChatCallStateSignal(payload); err == nil {
			return StateSignal{ChatCallState: v}
		}
	case "AuthorChatStateSignal":
		if v, err := dproto.UnmarshalAuthorChatStateSignal(payload); err == nil {
			return StateSignal{AuthorChatState: v}
		}
	case "AuthorChatSoundConfigStateSignal":
		if v, err := dproto.UnmarshalAuthorChatSoundConfigStateSignal(payload); err == nil {
			return StateSignal{AuthorChatSound: v}
		}
	case "CommonStateSignalCurrentRedpackList":
		if v, err := dproto.UnmarshalCommonStateSignalCurrentRedpackList(payload); err == nil {
			return StateSignal{LiveState: v}
		}
	}
	return StateSignal{Unknown: payload}
}

func decodeNotifySignal(signalType string, payload []byte) NotifySignal {
	switch signalType {
	case "CommonNotifySignalKickedOut":
		if v, err := dproto.UnmarshalCommonNotifySignalKickedOut(payload); err == nil {
			return NotifySignal{KickedOut: v}
		}
	case "CommonNotifySignalViolationAlert":
		if v, err := dproto.UnmarshalCommonNotifySignalViolationAlert(payload); err == nil {
			return NotifySignal{ViolationAlert: v}
		}
	case "LiveManagerStateNotifySignal":
		if v, err := dproto.UnmarshalLiveManagerStateNotifySignal(payload); err == nil {
			return NotifySignal{LiveManagerState: v}
		}
	}
	return NotifySignal{Unknown: payload}
}

func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
