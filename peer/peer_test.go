package peer

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/tokenized/spvpeer/mempool"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

// mockPeer wraps the far end of a net.Pipe and gives scenario scripts a small vocabulary for
// acting as a scripted remote Bitcoin node.
type mockPeer struct {
	t    *testing.T
	conn net.Conn
}

func (m *mockPeer) send(msg wire.Message) {
	m.t.Helper()
	if err := wire.WriteMessage(m.conn, msg, wire.ProtocolVersion, wire.MainNet); err != nil {
		m.t.Fatalf("mock send failed: %s", err)
	}
}

func (m *mockPeer) recv() wire.Message {
	m.t.Helper()
	msg, _, err := wire.ReadMessage(m.conn, wire.ProtocolVersion, wire.MainNet)
	if err != nil {
		m.t.Fatalf("mock recv failed: %s", err)
	}
	return msg
}

// handshakeAsMock performs the remote side of the handshake: read our Version, reply with its
// own, then Verack, then read our Verack.
func (m *mockPeer) handshakeAsMock(userAgent string) {
	m.t.Helper()

	ourVersion, ok := m.recv().(*wire.MsgVersion)
	if !ok {
		m.t.Fatalf("expected version from caller")
	}
	_ = ourVersion

	mockAddr := wire.NewNetAddressIPPort(net.IPv4(127, 0, 0, 1), 8333, 0)
	version := wire.NewMsgVersion(mockAddr, mockAddr, 1, 0)
	version.Services = wire.SFNodeWitness
	version.UserAgent = userAgent
	m.send(version)

	m.send(wire.NewMsgVerAck())

	if _, ok := m.recv().(*wire.MsgVerAck); !ok {
		m.t.Fatalf("expected verack from caller")
	}
}

func newConnectedPeer(t *testing.T, userAgent string) (*Peer, *mockPeer) {
	t.Helper()

	clientConn, mockConn := net.Pipe()
	mock := &mockPeer{t: t, conn: mockConn}

	pool := mempool.NewMempool()

	type result struct {
		peer *Peer
		err  error
	}
	done := make(chan result, 1)
	go func() {
		p, err := fromStream(context.Background(), clientConn, "127.0.0.1:8333", pool, wire.MainNet)
		done <- result{p, err}
	}()

	mock.handshakeAsMock(userAgent)

	r := <-done
	if r.err != nil {
		t.Fatalf("handshake failed: %s", r.err)
	}

	return r.peer, mock
}

// S1: handshake succeeds and the negotiated version is observable.
func TestHandshake(t *testing.T) {
	p, _ := newConnectedPeer(t, "/mock:1/")

	version := p.GetVersion()
	if version == nil {
		t.Fatal("GetVersion returned nil")
	}
	if version.UserAgent != "/mock:1/" {
		t.Errorf("UserAgent = %q, want /mock:1/", version.UserAgent)
	}
}

// S2: CFHeaders happy path.
func TestGetCFHeadersHappyPath(t *testing.T) {
	p, mock := newConnectedPeer(t, "/mock:1/")

	var stopHash chainhash.Hash
	stopHash[0] = 0xAB

	var h1, h2, h3 chainhash.Hash
	h1[0], h2[0], h3[0] = 1, 2, 3

	expected := &wire.MsgCFHeaders{
		FilterType:       wire.GCSFilterRegular,
		StopHash:         stopHash,
		PrevFilterHeader: chainhash.Hash{},
		FilterHashes:     []chainhash.Hash{h1, h2, h3},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		req, ok := mock.recv().(*wire.MsgGetCFHeaders)
		if !ok {
			t.Errorf("expected getcfheaders request")
			return
		}
		if req.FilterType != wire.GCSFilterRegular || req.StopHash != stopHash {
			t.Errorf("unexpected getcfheaders request: %+v", req)
		}
		mock.send(expected)
	}()

	got, err := p.GetCFHeaders(context.Background(), wire.GCSFilterRegular, 0, stopHash)
	<-done
	if err != nil {
		t.Fatalf("GetCFHeaders failed: %s", err)
	}

	if diff := deep.Equal(got, expected); diff != nil {
		t.Errorf("unexpected cfheaders: %v", diff)
	}
}

// S3: filter-type mismatch fails with InvalidResponse.
func TestGetCFCheckptFilterTypeMismatch(t *testing.T) {
	p, mock := newConnectedPeer(t, "/mock:1/")

	var stopHash chainhash.Hash
	stopHash[0] = 0xCD

	done := make(chan struct{})
	go func() {
		defer close(done)
		mock.recv()
		reply := &wire.MsgCFCheckpt{FilterType: wire.FilterType(1), StopHash: stopHash}
		mock.send(reply)
	}()

	_, err := p.GetCFCheckpt(context.Background(), wire.GCSFilterRegular, stopHash)
	<-done

	if errors.Cause(err) != ErrInvalidResponse {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

// S4: unsolicited Ping gets an immediate Pong, observed from the mock's side, without the caller
// ever calling Recv("ping", ...).
func TestAutoPong(t *testing.T) {
	_, mock := newConnectedPeer(t, "/mock:1/")

	mock.send(wire.NewMsgPing(0xDEADBEEF))

	pong, ok := mock.recv().(*wire.MsgPong)
	if !ok {
		t.Fatalf("expected pong from caller")
	}
	if pong.Nonce != 0xDEADBEEF {
		t.Errorf("Pong nonce = %x, want %x", pong.Nonce, uint64(0xDEADBEEF))
	}
}

// S5: mempool drain. Mock has {t1, t2}; caller already holds t1; AskForMempool fetches t2 only.
func TestAskForMempoolDrain(t *testing.T) {
	p, mock := newConnectedPeer(t, "/mock:1/")

	tx1 := wire.NewMsgTx(wire.TxVersion)
	tx1.LockTime = 1
	tx2 := wire.NewMsgTx(wire.TxVersion)
	tx2.LockTime = 2
	p.GetMempool().AddTx(tx1)

	txid1 := tx1.TxHash()
	txid2 := tx2.TxHash()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, ok := mock.recv().(*wire.MsgMemPool); !ok {
			t.Errorf("expected mempool request")
			return
		}

		inv := wire.NewMsgInv()
		inv.AddInvVect(wire.NewInvVect(wire.InvTypeTx, &txid1))
		inv.AddInvVect(wire.NewInvVect(wire.InvTypeTx, &txid2))
		mock.send(inv)

		getData, ok := mock.recv().(*wire.MsgGetData)
		if !ok {
			t.Errorf("expected getdata request")
			return
		}
		if len(getData.InvList) != 1 || getData.InvList[0].Hash != txid2 {
			t.Errorf("unexpected getdata request: %+v", getData)
			return
		}

		mock.send(tx2)
	}()

	if err := p.AskForMempool(context.Background()); err != nil {
		t.Fatalf("AskForMempool failed: %s", err)
	}
	<-done

	if !p.GetMempool().HasTx(txid2) {
		t.Error("mempool does not have txid2 after drain")
	}
}

// S6: disconnect. Mock closes the socket; IsConnected flips to false within one read budget, and a
// subsequent Send fails.
func TestDisconnect(t *testing.T) {
	p, mock := newConnectedPeer(t, "/mock:1/")

	mock.conn.Close()

	deadline := time.Now().Add(time.Second)
	for p.IsConnected() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if p.IsConnected() {
		t.Fatal("IsConnected still true after remote close")
	}

	if err := p.Send(context.Background(), wire.NewMsgPing(1)); err == nil {
		t.Error("Send succeeded after disconnect, want IO error")
	}
}
