package proto

// CompressionType mirrors ZtLiveScMessage.compression_type.
type CompressionType int32

const (
	CompressionNone CompressionType = iota
	CompressionGzip
)

// ZtLiveScMessage is the Push.ZtLiveInteractive.Message envelope.
type ZtLiveScMessage struct {
	CompressionType CompressionType
	MessageType     string
	Payload         []byte
}

func (m *ZtLiveScMessage) Marshal() []byte {
	var buf []byte
	buf = appendInt32(buf, 1, int32(m.CompressionType))
	buf = appendString(buf, 2, m.MessageType)
	buf = appendBytes(buf, 3, m.Payload)
	return buf
}

func UnmarshalZtLiveScMessage(data []byte) (*ZtLiveScMessage, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	m := &ZtLiveScMessage{}
	for _, f := range fields {
		switch f.num {
		case 1:
			m.CompressionType = CompressionType(f.varint)
		case 2:
			m.MessageType = string(f.bytes)
		case 3:
			m.Payload = f.bytes
		}
	}
	return m, nil
}

// StatusChangeType mirrors ZtLiveScStatusChanged.type.
type StatusChangeType int32

const (
	StatusUnknown StatusChangeType = iota
	StatusLiveClosed
	StatusLiveBanned
	StatusLiveOpen
)

// ZtLiveScStatusChanged signals a room lifecycle transition.
type ZtLiveScStatusChanged struct {
	Type StatusChangeType
}

func (s *ZtLiveScStatusChanged) Marshal() []byte {
	var buf []byte
	buf = appendInt32(buf, 1, int32(s.Type))
	return buf
}

func UnmarshalZtLiveScStatusChanged(data []byte) (*ZtLiveScStatusChanged, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	s := &ZtLiveScStatusChanged{}
	for _, f := range fields {
		if f.num == 1 {
			s.Type = StatusChangeType(f.varint)
		}
	}
	return s, nil
}

// ZtLiveScTicketInvalid signals that the ticket used to enter the room
// has expired or was rejected; carries no fields of its own.
type ZtLiveScTicketInvalid struct{}

func UnmarshalZtLiveScTicketInvalid(data []byte) (*ZtLiveScTicketInvalid, error) {
	return &ZtLiveScTicketInvalid{}, nil
}

// signalItem is the common shape of one entry inside an Action/State/Notify
// signal envelope: a type tag plus one or more raw inner payloads.
type signalItem struct {
	SignalType string
	Payloads   [][]byte
}

func parseSignalItems(data []byte) ([]signalItem, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	var items []signalItem
	for _, f := range fields {
		if f.num != 1 {
			continue
		}
		itemFields, err := parseFields(f.bytes)
		if err != nil {
			return nil, err
		}
		item := signalItem{}
		for _, itf := range itemFields {
			switch itf.num {
			case 1:
				item.SignalType = string(itf.bytes)
			case 2:
				item.Payloads = append(item.Payloads, itf.bytes)
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// ActionSignalItems decodes a ZtLiveScActionSignal envelope into its raw
// (signal_type, payload) entries. Each entry may repeat its payload field.
func ActionSignalItems(data []byte) ([]struct {
	SignalType string
	Payload    []byte
}, error) {
	items, err := parseSignalItems(data)
	if err != nil {
		return nil, err
	}
	var out []struct {
		SignalType string
		Payload    []byte
	}
	for _, item := range items {
		for _, pl := range item.Payloads {
			out = append(out, struct {
				SignalType string
				Payload    []byte
			}{SignalType: item.SignalType, Payload: pl})
		}
	}
	return out, nil
}

// StateSignalItems decodes a ZtLiveScStateSignal envelope: one payload per item.
func StateSignalItems(data []byte) ([]struct {
	SignalType string
	Payload    []byte
}, error) {
	items, err := parseSignalItems(data)
	if err != nil {
		return nil, err
	}
	var out []struct {
		SignalType string
		Payload    []byte
	}
	for _, item := range items {
		pl := []byte(nil)
		if len(item.Payloads) > 0 {
			pl = item.Payloads[0]
		}
		out = append(out, struct {
			SignalType string
			Payload    []byte
		}{SignalType: item.SignalType, Payload: pl})
	}
	return out, nil
}

// NotifySignalItems decodes a ZtLiveScNotifySignal envelope: one payload per item.
func NotifySignalItems(data []byte) ([]struct {
	SignalType string
	Payload    []byte
}, error) {
	return StateSignalItems(data)
}
