package dictionary

// FIX44 field tag constants. This is a static, hard-coded subset of the
// FIX.4.4 data dictionary — the tags exercised by the session layer
// (Logon/Logout/Heartbeat/TestRequest/ResendRequest/SequenceReset/Reject)
// plus a representative slice of application fields (NewOrderSingle,
// ExecutionReport, MarketDataSnapshot, Parties) sufficient to exercise
// nested repeating groups end to end, matching spec.md's scenarios (a)-(f).
const (
	BeginString   Tag = 8
	BodyLength    Tag = 9
	CheckSum      Tag = 10
	MsgSeqNum     Tag = 34
	MsgType       Tag = 35
	SenderCompID  Tag = 49
	TargetCompID  Tag = 56
	SendingTime   Tag = 52
	OrigSendingTime Tag = 122
	PossDupFlag   Tag = 43
	PossResend    Tag = 97

	EncryptMethod       Tag = 98
	HeartBtInt          Tag = 108
	ResetSeqNumFlag     Tag = 141
	NextExpectedMsgSeqNum Tag = 789
	Username            Tag = 553
	Password            Tag = 554
	TestReqID           Tag = 112
	BeginSeqNo          Tag = 7
	EndSeqNo            Tag = 16
	NewSeqNo            Tag = 36
	GapFillFlag         Tag = 123
	Text                Tag = 58
	RefSeqNum           Tag = 45
	RefTagID            Tag = 371
	RefMsgType          Tag = 372
	SessionRejectReason Tag = 373

	ClOrdID      Tag = 11
	Symbol       Tag = 55
	Side         Tag = 54
	TransactTime Tag = 60
	OrdType      Tag = 40
	Price        Tag = 44
	OrderQty     Tag = 38
	Currency     Tag = 15
	TimeInForce  Tag = 59

	ExecID    Tag = 17
	OrdStatus Tag = 39
	LastQty   Tag = 32
	LastPx    Tag = 31
	LeavesQty Tag = 151
	CumQty    Tag = 14
	AvgPx     Tag = 6

	NoMDEntries Tag = 268
	MDEntryType Tag = 269
	MDEntryPx   Tag = 270

	NoMiscFees  Tag = 136
	MiscFeeAmt  Tag = 137
	MiscFeeCurr Tag = 138
	MiscFeeType Tag = 139

	NoPartyIDs     Tag = 453
	PartyID        Tag = 448
	PartyIDSource  Tag = 447
	PartyRole      Tag = 452
	NoPartySubIDs  Tag = 802
	PartySubID     Tag = 523
	PartySubIDType Tag = 803
)

// Message type codes (tag 35). Administrative per spec.md's glossary:
// {0,1,2,3,4,5,A}.
const (
	MsgTypeHeartbeat     = "0"
	MsgTypeTestRequest   = "1"
	MsgTypeResendRequest = "2"
	MsgTypeReject        = "3"
	MsgTypeSequenceReset = "4"
	MsgTypeLogout        = "5"
	MsgTypeLogon         = "A"

	MsgTypeNewOrderSingle    = "D"
	MsgTypeExecutionReport   = "8"
	MsgTypeMarketDataSnapshot = "W"
)

// IsAdministrative reports whether msgType is a session-level (as opposed to
// application-level) message, per spec.md's glossary definition.
func IsAdministrative(msgType string) bool {
	switch msgType {
	case MsgTypeHeartbeat, MsgTypeTestRequest, MsgTypeResendRequest,
		MsgTypeReject, MsgTypeSequenceReset, MsgTypeLogout, MsgTypeLogon:
		return true
	default:
		return false
	}
}

// FIX44 builds and returns the static FIX.4.4 dictionary subset used by
// this engine. Called once at process startup.
func FIX44() *Dictionary {
	b := newBuilder()

	str := func(tag Tag, name string, section Section) {
		b.field(FieldDef{Tag: tag, Name: name, Type: TypeString, Section: section})
	}
	num := func(tag Tag, name string, section Section) {
		b.field(FieldDef{Tag: tag, Name: name, Type: TypeInt, Section: section})
	}

	str(BeginString, "BeginString", Header)
	num(BodyLength, "BodyLength", Header)
	str(MsgType, "MsgType", Header)
	num(MsgSeqNum, "MsgSeqNum", Header)
	str(SenderCompID, "SenderCompID", Header)
	str(TargetCompID, "TargetCompID", Header)
	b.field(FieldDef{Tag: SendingTime, Name: "SendingTime", Type: TypeTimestamp, Section: Header})
	b.field(FieldDef{Tag: OrigSendingTime, Name: "OrigSendingTime", Type: TypeTimestamp, Section: Header})
	b.field(FieldDef{Tag: PossDupFlag, Name: "PossDupFlag", Type: TypeBoolean, Section: Header})
	b.field(FieldDef{Tag: PossResend, Name: "PossResend", Type: TypeBoolean, Section: Header})

	b.field(FieldDef{Tag: CheckSum, Name: "CheckSum", Type: TypeString, Section: Trailer})

	num(EncryptMethod, "EncryptMethod", Body)
	num(HeartBtInt, "HeartBtInt", Body)
	b.field(FieldDef{Tag: ResetSeqNumFlag, Name: "ResetSeqNumFlag", Type: TypeBoolean, Section: Body})
	num(NextExpectedMsgSeqNum, "NextExpectedMsgSeqNum", Body)
	str(Username, "Username", Body)
	str(Password, "Password", Body)
	str(TestReqID, "TestReqID", Body)
	num(BeginSeqNo, "BeginSeqNo", Body)
	num(EndSeqNo, "EndSeqNo", Body)
	num(NewSeqNo, "NewSeqNo", Body)
	b.field(FieldDef{Tag: GapFillFlag, Name: "GapFillFlag", Type: TypeBoolean, Section: Body})
	str(Text, "Text", Body)
	num(RefSeqNum, "RefSeqNum", Body)
	num(RefTagID, "RefTagID", Body)
	str(RefMsgType, "RefMsgType", Body)
	str(SessionRejectReason, "SessionRejectReason", Body)

	str(ClOrdID, "ClOrdID", Body)
	str(Symbol, "Symbol", Body)
	str(Side, "Side", Body)
	b.field(FieldDef{Tag: TransactTime, Name: "TransactTime", Type: TypeTimestamp, Section: Body})
	str(OrdType, "OrdType", Body)
	b.field(FieldDef{Tag: Price, Name: "Price", Type: TypeDecimal, Section: Body})
	b.field(FieldDef{Tag: OrderQty, Name: "OrderQty", Type: TypeDecimal, Section: Body})
	b.field(FieldDef{Tag: Currency, Name: "Currency", Type: TypeCurrency, Section: Body})
	str(TimeInForce, "TimeInForce", Body)

	str(ExecID, "ExecID", Body)
	str(OrdStatus, "OrdStatus", Body)
	b.field(FieldDef{Tag: LastQty, Name: "LastQty", Type: TypeDecimal, Section: Body})
	b.field(FieldDef{Tag: LastPx, Name: "LastPx", Type: TypeDecimal, Section: Body})
	b.field(FieldDef{Tag: LeavesQty, Name: "LeavesQty", Type: TypeDecimal, Section: Body})
	b.field(FieldDef{Tag: CumQty, Name: "CumQty", Type: TypeDecimal, Section: Body})
	b.field(FieldDef{Tag: AvgPx, Name: "AvgPx", Type: TypeDecimal, Section: Body})

	b.field(FieldDef{Tag: NoMDEntries, Name: "NoMDEntries", Type: TypeInt, Section: Body, IsNumInGroup: true})
	str(MDEntryType, "MDEntryType", Body)
	b.field(FieldDef{Tag: MDEntryPx, Name: "MDEntryPx", Type: TypeDecimal, Section: Body})

	b.field(FieldDef{Tag: NoMiscFees, Name: "NoMiscFees", Type: TypeInt, Section: Body, IsNumInGroup: true})
	b.field(FieldDef{Tag: MiscFeeAmt, Name: "MiscFeeAmt", Type: TypeDecimal, Section: Body})
	b.field(FieldDef{Tag: MiscFeeCurr, Name: "MiscFeeCurr", Type: TypeCurrency, Section: Body})
	str(MiscFeeType, "MiscFeeType", Body)

	b.field(FieldDef{Tag: NoPartyIDs, Name: "NoPartyIDs", Type: TypeInt, Section: Body, IsNumInGroup: true})
	str(PartyID, "PartyID", Body)
	str(PartyIDSource, "PartyIDSource", Body)
	num(PartyRole, "PartyRole", Body)
	b.field(FieldDef{Tag: NoPartySubIDs, Name: "NoPartySubIDs", Type: TypeInt, Section: Body, IsNumInGroup: true})
	str(PartySubID, "PartySubID", Body)
	str(PartySubIDType, "PartySubIDType", Body)

	standardHeader := &Component{Name: "StandardHeader", Items: []LayoutItem{
		{Kind: LayoutField, Field: BeginString},
		{Kind: LayoutField, Field: BodyLength},
		{Kind: LayoutField, Field: MsgType},
		{Kind: LayoutField, Field: SenderCompID},
		{Kind: LayoutField, Field: TargetCompID},
		{Kind: LayoutField, Field: MsgSeqNum},
		{Kind: LayoutField, Field: PossDupFlag},
		{Kind: LayoutField, Field: PossResend},
		{Kind: LayoutField, Field: SendingTime},
		{Kind: LayoutField, Field: OrigSendingTime},
	}}
	standardTrailer := &Component{Name: "StandardTrailer", Items: []LayoutItem{
		{Kind: LayoutField, Field: CheckSum},
	}}
	b.component(standardHeader)
	b.component(standardTrailer)

	partySubIDsGroup := LayoutItem{
		Kind:       LayoutGroup,
		GroupStart: NoPartySubIDs,
		GroupItems: []LayoutItem{
			{Kind: LayoutField, Field: PartySubID},
			{Kind: LayoutField, Field: PartySubIDType},
		},
	}
	partyIDsGroup := LayoutItem{
		Kind:       LayoutGroup,
		GroupStart: NoPartyIDs,
		GroupItems: []LayoutItem{
			{Kind: LayoutField, Field: PartyID},
			{Kind: LayoutField, Field: PartyIDSource},
			{Kind: LayoutField, Field: PartyRole},
			partySubIDsGroup,
		},
	}
	miscFeesGroup := LayoutItem{
		Kind:       LayoutGroup,
		GroupStart: NoMiscFees,
		GroupItems: []LayoutItem{
			{Kind: LayoutField, Field: MiscFeeAmt},
			{Kind: LayoutField, Field: MiscFeeCurr},
			{Kind: LayoutField, Field: MiscFeeType},
		},
	}
	mdEntriesGroup := LayoutItem{
		Kind:       LayoutGroup,
		GroupStart: NoMDEntries,
		GroupItems: []LayoutItem{
			{Kind: LayoutField, Field: MDEntryType},
			{Kind: LayoutField, Field: MDEntryPx},
		},
	}

	b.component(&Component{Name: "NewOrderSingle", Items: []LayoutItem{
		{Kind: LayoutField, Field: ClOrdID},
		{Kind: LayoutField, Field: Symbol},
		{Kind: LayoutField, Field: Side},
		{Kind: LayoutField, Field: TransactTime},
		{Kind: LayoutField, Field: OrdType},
		{Kind: LayoutField, Field: Price},
		{Kind: LayoutField, Field: OrderQty},
		{Kind: LayoutField, Field: Currency},
		{Kind: LayoutField, Field: TimeInForce},
		miscFeesGroup,
	}})
	b.component(&Component{Name: "ExecutionReport", Items: []LayoutItem{
		{Kind: LayoutField, Field: ClOrdID},
		{Kind: LayoutField, Field: ExecID},
		{Kind: LayoutField, Field: OrdStatus},
		{Kind: LayoutField, Field: Symbol},
		{Kind: LayoutField, Field: Side},
		{Kind: LayoutField, Field: OrderQty},
		{Kind: LayoutField, Field: LastQty},
		{Kind: LayoutField, Field: LastPx},
		{Kind: LayoutField, Field: LeavesQty},
		{Kind: LayoutField, Field: CumQty},
		{Kind: LayoutField, Field: AvgPx},
		partyIDsGroup,
	}})
	b.component(&Component{Name: "MarketDataSnapshot", Items: []LayoutItem{
		mdEntriesGroup,
	}})
	b.component(&Component{Name: "Logon", Items: []LayoutItem{
		{Kind: LayoutField, Field: EncryptMethod},
		{Kind: LayoutField, Field: HeartBtInt},
		{Kind: LayoutField, Field: ResetSeqNumFlag},
		{Kind: LayoutField, Field: NextExpectedMsgSeqNum},
		{Kind: LayoutField, Field: Username},
		{Kind: LayoutField, Field: Password},
	}})
	b.component(&Component{Name: "ResendRequest", Items: []LayoutItem{
		{Kind: LayoutField, Field: BeginSeqNo},
		{Kind: LayoutField, Field: EndSeqNo},
	}})
	b.component(&Component{Name: "SequenceReset", Items: []LayoutItem{
		{Kind: LayoutField, Field: GapFillFlag},
		{Kind: LayoutField, Field: NewSeqNo},
	}})
	b.component(&Component{Name: "TestRequest", Items: []LayoutItem{
		{Kind: LayoutField, Field: TestReqID},
	}})
	b.component(&Component{Name: "Reject", Items: []LayoutItem{
		{Kind: LayoutField, Field: RefSeqNum},
		{Kind: LayoutField, Field: RefTagID},
		{Kind: LayoutField, Field: RefMsgType},
		{Kind: LayoutField, Field: SessionRejectReason},
		{Kind: LayoutField, Field: Text},
	}})

	return b.finalize()
}
