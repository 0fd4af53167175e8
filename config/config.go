// Package config loads the environment-driven settings for a single spvpeer connection.
package config

import (
	"fmt"

	"github.com/tokenized/spvpeer/peer"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// PeerConfig holds the settings needed to connect a single Peer: which network to speak, which
// remote address to dial, and the optional SOCKS5 proxy to dial through.
type PeerConfig struct {
	Network string `default:"mainnet" envconfig:"NETWORK" json:"network"`
	Address string `envconfig:"PEER_ADDRESS" json:"peer_address"`

	ProxyAddress  string `envconfig:"PROXY_ADDRESS" json:"proxy_address"`
	ProxyUsername string `envconfig:"PROXY_USERNAME" json:"proxy_username"`
	ProxyPassword string `envconfig:"PROXY_PASSWORD" json:"proxy_password" masked:"true"`
}

// NewPeerConfig loads a PeerConfig from the environment, applying struct defaults and envconfig
// tag lookups.
func NewPeerConfig() (*PeerConfig, error) {
	var config PeerConfig
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.Wrap(err, "envconfig")
	}

	return &config, nil
}

// NetworkTag resolves the configured network name to the wire magic Peer expects.
func (c PeerConfig) NetworkTag() (peer.Network, error) {
	switch c.Network {
	case "mainnet":
		return peer.MainNet, nil
	case "testnet3":
		return peer.TestNet3, nil
	case "signet":
		return peer.Signet, nil
	case "regtest":
		return peer.Regtest, nil
	default:
		return 0, errors.Errorf("unknown network: %s", c.Network)
	}
}

// HasProxy reports whether a SOCKS5 proxy address was configured.
func (c PeerConfig) HasProxy() bool {
	return len(c.ProxyAddress) > 0
}

// ProxyCredentials returns the configured proxy username/password as a peer.ProxyCredentials, or
// nil if neither was set.
func (c PeerConfig) ProxyCredentials() *peer.ProxyCredentials {
	if len(c.ProxyUsername) == 0 && len(c.ProxyPassword) == 0 {
		return nil
	}

	return &peer.ProxyCredentials{
		Username: c.ProxyUsername,
		Password: c.ProxyPassword,
	}
}

// String returns a custom string representation so the proxy password is never logged. The proxy
// username is included as is.
func (c PeerConfig) String() string {
	return fmt.Sprintf("{Network:%v Address:%v ProxyAddress:%v ProxyUsername:%v ProxyPassword:%v}",
		c.Network, c.Address, c.ProxyAddress, c.ProxyUsername, "****")
}
