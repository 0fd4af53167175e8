package peer

import (
	"github.com/btcsuite/btcd/wire"
)

// Network identifies which Bitcoin network a Peer speaks on. It is a type alias for the upstream
// magic-value type so peer code never needs to import wire just to name a network.
type Network = wire.BitcoinNet

const (
	MainNet  = wire.MainNet
	TestNet3 = wire.TestNet3

	// Regtest reuses the upstream "TestNet" constant, which despite its name carries the regtest
	// magic value.
	Regtest = wire.TestNet

	// Signet has no constant in the upstream wire package at this pin. The magic value below is
	// the standard one defined by BIP325.
	Signet Network = 0x40cf030a
)
