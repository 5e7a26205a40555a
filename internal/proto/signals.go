package proto

// Leaf message types carried inside ZtLiveScActionSignal / StateSignal /
// NotifySignal items. Each has a Marshal method (used by tests to build
// scripted server payloads) and an Unmarshal function (used by the signal
// decoder in internal/core).

// --- ActionSignal leaves ---

type CommonActionSignalComment struct {
	UserID     int64
	UserName   string
	Content    string
	SendTimeMs int64
}

func (c *CommonActionSignalComment) Marshal() []byte {
	var buf []byte
	buf = appendInt64(buf, 1, c.UserID)
	buf = appendString(buf, 2, c.UserName)
	buf = appendString(buf, 3, c.Content)
	buf = appendInt64(buf, 4, c.SendTimeMs)
	return buf
}

func UnmarshalCommonActionSignalComment(data []byte) (*CommonActionSignalComment, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &CommonActionSignalComment{}
	for _, f := range fields {
		switch f.num {
		case 1:
			c.UserID = int64(f.varint)
		case 2:
			c.UserName = string(f.bytes)
		case 3:
			c.Content = string(f.bytes)
		case 4:
			c.SendTimeMs = int64(f.varint)
		}
	}
	return c, nil
}

type CommonActionSignalLike struct {
	UserID     int64
	UserName   string
	SendTimeMs int64
}

func (c *CommonActionSignalLike) Marshal() []byte {
	var buf []byte
	buf = appendInt64(buf, 1, c.UserID)
	buf = appendString(buf, 2, c.UserName)
	buf = appendInt64(buf, 3, c.SendTimeMs)
	return buf
}

func UnmarshalCommonActionSignalLike(data []byte) (*CommonActionSignalLike, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &CommonActionSignalLike{}
	for _, f := range fields {
		switch f.num {
		case 1:
			c.UserID = int64(f.varint)
		case 2:
			c.UserName = string(f.bytes)
		case 3:
			c.SendTimeMs = int64(f.varint)
		}
	}
	return c, nil
}

type CommonActionSignalEnterRoom struct {
	UserID     int64
	UserName   string
	SendTimeMs int64
}

func (c *CommonActionSignalEnterRoom) Marshal() []byte {
	var buf []byte
	buf = appendInt64(buf, 1, c.UserID)
	buf = appendString(buf, 2, c.UserName)
	buf = appendInt64(buf, 3, c.SendTimeMs)
	return buf
}

func UnmarshalCommonActionSignalEnterRoom(data []byte) (*CommonActionSignalEnterRoom, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &CommonActionSignalEnterRoom{}
	for _, f := range fields {
		switch f.num {
		case 1:
			c.UserID = int64(f.varint)
		case 2:
			c.UserName = string(f.bytes)
		case 3:
			c.SendTimeMs = int64(f.varint)
		}
	}
	return c, nil
}

type CommonActionSignalFollowAuthor struct {
	UserID     int64
	UserName   string
	SendTimeMs int64
}

func (c *CommonActionSignalFollowAuthor) Marshal() []byte {
	var buf []byte
	buf = appendInt64(buf, 1, c.UserID)
	buf = appendString(buf, 2, c.UserName)
	buf = appendInt64(buf, 3, c.SendTimeMs)
	return buf
}

func UnmarshalCommonActionSignalFollowAuthor(data []byte) (*CommonActionSignalFollowAuthor, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &CommonActionSignalFollowAuthor{}
	for _, f := range fields {
		switch f.num {
		case 1:
			c.UserID = int64(f.varint)
		case 2:
			c.UserName = string(f.bytes)
		case 3:
			c.SendTimeMs = int64(f.varint)
		}
	}
	return c, nil
}

type CommonActionSignalThrowBanana struct {
	UserID     int64
	UserName   string
	BananaCount int32
	SendTimeMs int64
}

func (c *CommonActionSignalThrowBanana) Marshal() []byte {
	var buf []byte
	buf = appendInt64(buf, 1, c.UserID)
	buf = appendString(buf, 2, c.UserName)
	buf = appendInt32(buf, 3, c.BananaCount)
	buf = appendInt64(buf, 4, c.SendTimeMs)
	return buf
}

func UnmarshalCommonActionSignalThrowBanana(data []byte) (*CommonActionSignalThrowBanana, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &CommonActionSignalThrowBanana{}
	for _, f := range fields {
		switch f.num {
		case 1:
			c.UserID = int64(f.varint)
		case 2:
			c.UserName = string(f.bytes)
		case 3:
			c.BananaCount = int32(f.varint)
		case 4:
			c.SendTimeMs = int64(f.varint)
		}
	}
	return c, nil
}

type CommonActionSignalGift struct {
	UserID     int64
	UserName   string
	GiftID     int64
	GiftName   string
	Count      int32
	ComboCount int32
	SendTimeMs int64
}

func (c *CommonActionSignalGift) Marshal() []byte {
	var buf []byte
	buf = appendInt64(buf, 1, c.UserID)
	buf = appendString(buf, 2, c.UserName)
	buf = appendInt64(buf, 3, c.GiftID)
	buf = appendString(buf, 4, c.GiftName)
	buf = appendInt32(buf, 5, c.Count)
	buf = appendInt32(buf, 6, c.ComboCount)
	buf = appendInt64(buf, 7, c.SendTimeMs)
	return buf
}

func UnmarshalCommonActionSignalGift(data []byte) (*CommonActionSignalGift, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &CommonActionSignalGift{}
	for _, f := range fields {
		switch f.num {
		case 1:
			c.UserID = int64(f.varint)
		case 2:
			c.UserName = string(f.bytes)
		case 3:
			c.GiftID = int64(f.varint)
		case 4:
			c.GiftName = string(f.bytes)
		case 5:
			c.Count = int32(f.varint)
		case 6:
			c.ComboCount = int32(f.varint)
		case 7:
			c.SendTimeMs = int64(f.varint)
		}
	}
	return c, nil
}

type CommonActionSignalRichText struct {
	Content    string
	SendTimeMs int64
}

func (c *CommonActionSignalRichText) Marshal() []byte {
	var buf []byte
	buf = appendString(buf, 1, c.Content)
	buf = appendInt64(buf, 2, c.SendTimeMs)
	return buf
}

func UnmarshalCommonActionSignalRichText(data []byte) (*CommonActionSignalRichText, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &CommonActionSignalRichText{}
	for _, f := range fields {
		switch f.num {
		case 1:
			c.Content = string(f.bytes)
		case 2:
			c.SendTimeMs = int64(f.varint)
		}
	}
	return c, nil
}

type CommonActionSignalJoinClub struct {
	UserID     int64
	UserName   string
	JoinTimeMs int64
}

func (c *CommonActionSignalJoinClub) Marshal() []byte {
	var buf []byte
	buf = appendInt64(buf, 1, c.UserID)
	buf = appendString(buf, 2, c.UserName)
	buf = appendInt64(buf, 3, c.JoinTimeMs)
	return buf
}

func UnmarshalCommonActionSignalJoinClub(data []byte) (*CommonActionSignalJoinClub, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &CommonActionSignalJoinClub{}
	for _, f := range fields {
		switch f.num {
		case 1:
			c.UserID = int64(f.varint)
		case 2:
			c.UserName = string(f.bytes)
		case 3:
			c.JoinTimeMs = int64(f.varint)
		}
	}
	return c, nil
}

// --- StateSignal leaves ---

type CommonStateSignalDisplayInfo struct {
	WatchingCount string
	LikeCount     string
}

func (c *CommonStateSignalDisplayInfo) Marshal() []byte {
	var buf []byte
	buf = appendString(buf, 1, c.WatchingCount)
	buf = appendString(buf, 2, c.LikeCount)
	return buf
}

func UnmarshalCommonStateSignalDisplayInfo(data []byte) (*CommonStateSignalDisplayInfo, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &CommonStateSignalDisplayInfo{}
	for _, f := range fields {
		switch f.num {
		case 1:
			c.WatchingCount = string(f.bytes)
		case 2:
			c.LikeCount = string(f.bytes)
		}
	}
	return c, nil
}

type CommonStateSignalTopUser struct {
	UserIDs []int64
}

func (c *CommonStateSignalTopUser) Marshal() []byte {
	var buf []byte
	for _, id := range c.UserIDs {
		buf = appendInt64(buf, 1, id)
	}
	return buf
}

func UnmarshalCommonStateSignalTopUser(data []byte) (*CommonStateSignalTopUser, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &CommonStateSignalTopUser{}
	for _, f := range fields {
		if f.num == 1 {
			c.UserIDs = append(c.UserIDs, int64(f.varint))
		}
	}
	return c, nil
}

type CommonStateSignalRecentComment struct {
	Comments [][]byte
}

func (c *CommonStateSignalRecentComment) Marshal() []byte {
	var buf []byte
	for _, cm := range c.Comments {
		buf = appendBytes(buf, 1, cm)
	}
	return buf
}

func UnmarshalCommonStateSignalRecentComment(data []byte) (*CommonStateSignalRecentComment, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &CommonStateSignalRecentComment{}
	for _, f := range fields {
		if f.num == 1 {
			c.Comments = append(c.Comments, f.bytes)
		}
	}
	return c, nil
}

type CommonStateSignalRedpackList struct {
	RedpackIDs []string
}

func (c *CommonStateSignalRedpackList) Marshal() []byte {
	var buf []byte
	for _, id := range c.RedpackIDs {
		buf = appendString(buf, 1, id)
	}
	return buf
}

func UnmarshalCommonStateSignalRedpackList(data []byte) (*CommonStateSignalRedpackList, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &CommonStateSignalRedpackList{}
	for _, f := range fields {
		if f.num == 1 {
			c.RedpackIDs = append(c.RedpackIDs, string(f.bytes))
		}
	}
	return c, nil
}

type ChatCallStateSignal struct {
	State int32
}

func (c *ChatCallStateSignal) Marshal() []byte {
	return appendInt32(nil, 1, c.State)
}

func UnmarshalChatCallStateSignal(data []byte) (*ChatCallStateSignal, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &ChatCallStateSignal{}
	for _, f := range fields {
		if f.num == 1 {
			c.State = int32(f.varint)
		}
	}
	return c, nil
}

type AuthorChatStateSignal struct {
	State int32
}

func (c *AuthorChatStateSignal) Marshal() []byte {
	return appendInt32(nil, 1, c.State)
}

func UnmarshalAuthorChatStateSignal(data []byte) (*AuthorChatStateSignal, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &AuthorChatStateSignal{}
	for _, f := range fields {
		if f.num == 1 {
			c.State = int32(f.varint)
		}
	}
	return c, nil
}

type AuthorChatSoundConfigStateSignal struct {
	SoundEnabled bool
}

func (c *AuthorChatSoundConfigStateSignal) Marshal() []byte {
	return appendBool(nil, 1, c.SoundEnabled)
}

func UnmarshalAuthorChatSoundConfigStateSignal(data []byte) (*AuthorChatSoundConfigStateSignal, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &AuthorChatSoundConfigStateSignal{}
	for _, f := range fields {
		if f.num == 1 {
			c.SoundEnabled = f.varint != 0
		}
	}
	return c, nil
}

type CommonStateSignalCurrentRedpackList struct {
	LiveState int32
}

func (c *CommonStateSignalCurrentRedpackList) Marshal() []byte {
	return appendInt32(nil, 1, c.LiveState)
}

func UnmarshalCommonStateSignalCurrentRedpackList(data []byte) (*CommonStateSignalCurrentRedpackList, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &CommonStateSignalCurrentRedpackList{}
	for _, f := range fields {
		if f.num == 1 {
			c.LiveState = int32(f.varint)
		}
	}
	return c, nil
}

// --- NotifySignal leaves ---

type CommonNotifySignalKickedOut struct {
	Reason string
}

func (c *CommonNotifySignalKickedOut) Marshal() []byte {
	return appendString(nil, 1, c.Reason)
}

func UnmarshalCommonNotifySignalKickedOut(data []byte) (*CommonNotifySignalKickedOut, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &CommonNotifySignalKickedOut{}
	for _, f := range fields {
		if f.num == 1 {
			c.Reason = string(f.bytes)
		}
	}
	return c, nil
}

type CommonNotifySignalViolationAlert struct {
	Message string
}

func (c *CommonNotifySignalViolationAlert) Marshal() []byte {
	return appendString(nil, 1, c.Message)
}

func UnmarshalCommonNotifySignalViolationAlert(data []byte) (*CommonNotifySignalViolationAlert, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &CommonNotifySignalViolationAlert{}
	for _, f := range fields {
		if f.num == 1 {
			c.Message = string(f.bytes)
		}
	}
	return c, nil
}

type LiveManagerStateNotifySignal struct {
	ManagerState int32
}

func (c *LiveManagerStateNotifySignal) Marshal() []byte {
	return appendInt32(nil, 1, c.ManagerState)
}

func UnmarshalLiveManagerStateNotifySignal(data []byte) (*LiveManagerStateNotifySignal, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	c := &LiveManagerStateNotifySignal{}
	for _, f := range fields {
		if f.num == 1 {
			c.ManagerState = int32(f.varint)
		}
	}
	return c, nil
}
