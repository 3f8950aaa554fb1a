// FILE: pkg/flow/command/table.go
// PURPOSE: Topic → interpreter lookup table (no dynamic dispatch needed)

package command

// Topic names the answer domain a sibling interpreter owns. Topics are
// walked while the conversation collects the document's answer fields.
const (
	TopicPCA           = "pca"
	TopicPriceResearch = "price_research"
	TopicLegalBasis    = "legal_basis"
	TopicStrategies    = "solution_strategies"
	TopicQtyValue      = "qty_value"
	TopicInstallment   = "installment"
	TopicSummary       = "summary"
)

// Context carries the bits of session state an interpreter may resolve
// against (currently only the offered strategy titles).
type Context struct {
	StrategyTitles []string
}

// Interpreter is one domain's parse function. Every interpreter defaults
// to an unclear-equivalent intent on no match — the table has no error path.
type Interpreter func(message string, ctx Context) Intent

var interpreterTable = map[string]Interpreter{
	TopicPCA:           func(m string, _ Context) Intent { return ParsePCA(m) },
	TopicPriceResearch: func(m string, _ Context) Intent { return ParsePriceResearch(m) },
	TopicLegalBasis:    func(m string, _ Context) Intent { return ParseLegalBasis(m) },
	TopicStrategies:    func(m string, c Context) Intent { return ParseStrategy(m, c.StrategyTitles) },
	TopicQtyValue:      func(m string, _ Context) Intent { return ParseQtyValue(m) },
	TopicInstallment:   func(m string, _ Context) Intent { return ParseInstallment(m) },
	TopicSummary:       func(m string, _ Context) Intent { return ParseSummary(m) },
}

// TopicOrder is the sequence in which answer topics are collected.
var TopicOrder = []string{
	TopicStrategies,
	TopicPCA,
	TopicLegalBasis,
	TopicQtyValue,
	TopicPriceResearch,
	TopicInstallment,
	TopicSummary,
}

// InterpreterFor resolves the interpreter for a topic.
func InterpreterFor(topic string) (Interpreter, bool) {
	i, ok := interpreterTable[topic]
	return i, ok
}
