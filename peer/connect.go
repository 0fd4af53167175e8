package peer

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"net"
	"strconv"

	"github.com/tokenized/spvpeer/logger"
	"github.com/tokenized/spvpeer/mempool"

	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/go-socks/socks"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ProxyCredentials is the optional username/password pair for a SOCKS5 proxy that requires
// authentication.
type ProxyCredentials struct {
	Username string
	Password string
}

// Connect opens a plaintext TCP connection to address and performs the handshake.
func Connect(ctx context.Context, address string, pool *mempool.Mempool, network Network) (*Peer, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, errors.Wrap(err, "dial")
	}

	return fromStream(ctx, conn, address, pool, network)
}

// ConnectProxy opens a SOCKS5 tunnel through proxyAddress to target, with optional username/
// password authentication, then performs the handshake over the tunnelled stream.
func ConnectProxy(ctx context.Context, target, proxyAddress string, credentials *ProxyCredentials,
	pool *mempool.Mempool, network Network) (*Peer, error) {

	proxy := &socks.Proxy{
		Addr: proxyAddress,
	}
	if credentials != nil {
		proxy.Username = credentials.Username
		proxy.Password = credentials.Password
	}

	conn, err := proxy.Dial("tcp", target)
	if err != nil {
		return nil, errors.Wrap(err, "proxy dial")
	}

	return fromStream(ctx, conn, target, pool, network)
}

// fromStream spawns the reader worker before any bytes are written, so it is installed to receive
// the remote peer's Version, then runs the version/verack handshake over conn.
func fromStream(ctx context.Context, conn net.Conn, remoteAddress string, pool *mempool.Mempool,
	network Network) (*Peer, error) {

	p := newPeer(conn, pool, network)
	p.sessionID = uuid.New().String()

	ctx = logger.ContextWithLogSubSystem(ctx, SubSystem)
	ctx = logger.ContextWithLogTrace(ctx, p.sessionID)
	p.startReader(ctx)

	if err := p.handshake(ctx, remoteAddress); err != nil {
		return p, err
	}

	return p, nil
}

// handshake builds and sends our Version, then awaits the remote peer's Version and Verack before
// sending our own Verack. Per the design notes these waits have no explicit timeout; the socket's
// own timeout, if any, bounds them.
func (p *Peer) handshake(ctx context.Context, remoteAddress string) error {
	nonce, err := randomNonce()
	if err != nil {
		return errors.Wrap(err, "nonce")
	}

	remoteAddr, err := peerAddress(remoteAddress)
	if err != nil {
		return errors.Wrap(err, "remote address")
	}

	localAddr := wire.NewNetAddressIPPort(net.IPv6zero, 0, 0)

	version := wire.NewMsgVersion(localAddr, remoteAddr, nonce, 0)
	version.Services = wire.SFNodeWitness
	if version.Timestamp.Unix() < 0 {
		return errors.Wrap(ErrSystemTime, "clock before epoch")
	}

	if err := p.send(ctx, version); err != nil {
		return err
	}

	remoteVersionMsg, ok := p.Recv(wire.CmdVersion, 0)
	if !ok {
		return errors.Wrap(ErrTimeout, "version")
	}
	remoteVersion, ok := remoteVersionMsg.(*wire.MsgVersion)
	if !ok {
		return errors.Wrap(ErrInvalidResponse, "expected version")
	}
	p.setVersion(remoteVersion)

	verAckMsg, ok := p.Recv(wire.CmdVerAck, 0)
	if !ok {
		return errors.Wrap(ErrTimeout, "verack")
	}
	if _, ok := verAckMsg.(*wire.MsgVerAck); !ok {
		return errors.Wrap(ErrInvalidResponse, "expected verack")
	}

	return p.send(ctx, wire.NewMsgVerAck())
}

func randomNonce() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// peerAddress resolves address ("host:port") into the NetAddress we report as the receiver in our
// Version message.
func peerAddress(address string) (*wire.NetAddress, error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, errors.Wrap(err, "port")
	}

	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			return nil, errors.Wrap(err, "resolve host")
		}
		ip = ips[0]
	}

	return wire.NewNetAddressIPPort(ip, uint16(port), 0), nil
}
