package zebra

// BankData is one fully assembled GDF user-data buffer: the payload of a
// bank-start logical record plus any extension records, positioned just past
// the 10-word logical header and the optional user-header I/O control word.
type BankData struct {
	NWTX   uint32 // text-vector words
	NWSEG  uint32 // symbol-table words
	NWTAB  uint32 // reference-table words
	NWBK   uint32 // declared bank words
	LENTRY uint32
	NWUH   uint32 // user-header words
	Words  []byte
}

// frameResult is what one physical-record read produces. When Discard is set
// the payload was consumed from the stream but must be thrown away and the
// next frame requested.
type frameResult struct {
	nwtolr  uint32
	payload []byte
	discard bool
}
