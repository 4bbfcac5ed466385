package ui

// Status symbols used in command output.
const (
	SymbolSuccess = "✓"
	SymbolFail    = "✗"
	SymbolWarning = "!"
	SymbolBullet  = "●"
)
