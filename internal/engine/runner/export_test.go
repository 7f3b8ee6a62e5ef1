package runner

// FixOutput exposes fixOutput for testing.
var FixOutput = fixOutput

// QuoteCommand exposes quoteCommand for testing.
var QuoteCommand = quoteCommand
