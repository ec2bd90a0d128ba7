package domain

// Position is the venue-reported net position for one symbol. It is replaced
// wholesale by the balance-refresh poller, never patched from local events.
type Position struct {
	Symbol     string
	NetSize    float64
	EntryPrice float64
}

// IsLong checks if the position is Long.
func (p *Position) IsLong() bool {
	return p.NetSize > 0
}

// IsShort checks if the position is Short.
func (p *Position) IsShort() bool {
	return p.NetSize < 0
}

// AccountState is one wholesale snapshot of venue-reported account truth.
type AccountState struct {
	AccountValue float64
	Withdrawable float64
	Positions    map[string]Position
}
