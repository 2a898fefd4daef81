package synthesis

// InsufficientEvidenceMessage replaces any answer where the engine signals
// that the corpus does not support the question. This is a normal answer,
// not an error.
const InsufficientEvidenceMessage = "The uploaded documents do not contain enough information to answer this question. " +
	"Try rephrasing the question or uploading additional documents that cover this topic."

// DefaultInsufficiencyPhrases is the phrase set tested against lower-cased
// raw answers when no configuration overrides it.
var DefaultInsufficiencyPhrases = []string{
	"cannot answer",
	"not enough information",
	"insufficient information",
	"no relevant information found",
}

// DefaultEchoPrefixes are literal lead-ins models use to repeat the
// question back before answering.
var DefaultEchoPrefixes = []string{
	"question:",
	"the question is:",
	"regarding your question about",
	"to answer your question:",
}
