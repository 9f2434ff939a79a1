package constants

// CodecID identifies the small set of codecs the adapter special-cases.
// It is a local, backend-independent enum; the session package is
// responsible for mapping the real astiav.CodecID into one of these
// values (or CodecIDOther) at the boundary, which keeps the index and
// preroll packages testable without linking against libavcodec.
type CodecID string

const (
	CodecIDAAC     CodecID = "aac"
	CodecIDAACLATM CodecID = "aac_latm"
	CodecIDMP3     CodecID = "mp3"
	CodecIDMP3ON4  CodecID = "mp3on4"
	CodecIDOther   CodecID = "other"
)
