package settings

// Mode selects which storage backs every settings read and write.
type Mode int

const (
	// ModeIndividual stores settings per site.
	ModeIndividual Mode = iota
	// ModeNetwork stores settings once for the whole network.
	ModeNetwork
)

func (m Mode) String() string {
	switch m {
	case ModeIndividual:
		return "individual"
	case ModeNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Scope names the storage scope used in logs and activity events.
func (m Mode) Scope() string {
	switch m {
	case ModeIndividual:
		return "site"
	case ModeNetwork:
		return "network"
	default:
		return "unknown"
	}
}
