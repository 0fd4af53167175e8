package peer

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
)

// filterRequestTimeout is the default round-trip budget for the compact-filter synchronous
// requests.
const filterRequestTimeout = 30 * time.Second

// GetCFCheckpt requests the checkpoint chain for filterType up to stopHash and awaits the single
// CFCheckpt reply. Fails with ErrInvalidResponse if the reply names a different filter type.
func (p *Peer) GetCFCheckpt(ctx context.Context, filterType wire.FilterType, stopHash chainhash.Hash) (*wire.MsgCFCheckpt, error) {
	msg := wire.NewMsgGetCFCheckpt(filterType, stopHash)
	if err := p.send(ctx, msg); err != nil {
		return nil, err
	}

	reply, ok := p.Recv(wire.CmdCFCheckpt, filterRequestTimeout)
	if !ok {
		return nil, errors.Wrap(ErrTimeout, "cfcheckpt")
	}

	checkpt, ok := reply.(*wire.MsgCFCheckpt)
	if !ok {
		return nil, errors.Wrap(ErrInvalidResponse, "expected cfcheckpt")
	}
	if checkpt.FilterType != filterType {
		return nil, errors.Wrap(ErrInvalidResponse, "filter type mismatch")
	}

	return checkpt, nil
}

// GetCFHeaders requests the filter header chain between startHeight and stopHash for filterType
// and awaits the single CFHeaders reply. Fails with ErrInvalidResponse if the reply names a
// different filter type.
func (p *Peer) GetCFHeaders(ctx context.Context, filterType wire.FilterType, startHeight uint32,
	stopHash chainhash.Hash) (*wire.MsgCFHeaders, error) {

	msg := wire.NewMsgGetCFHeaders(filterType, startHeight, stopHash)
	if err := p.send(ctx, msg); err != nil {
		return nil, err
	}

	reply, ok := p.Recv(wire.CmdCFHeaders, filterRequestTimeout)
	if !ok {
		return nil, errors.Wrap(ErrTimeout, "cfheaders")
	}

	headers, ok := reply.(*wire.MsgCFHeaders)
	if !ok {
		return nil, errors.Wrap(ErrInvalidResponse, "expected cfheaders")
	}
	if headers.FilterType != filterType {
		return nil, errors.Wrap(ErrInvalidResponse, "filter type mismatch")
	}

	return headers, nil
}

// GetCFilters requests the compact filters between startHeight and stopHash for filterType and
// returns immediately; replies arrive as a stream of CFilter messages the caller drains one at a
// time with PopCFilterResp.
func (p *Peer) GetCFilters(ctx context.Context, filterType wire.FilterType, startHeight uint32,
	stopHash chainhash.Hash) error {

	return p.send(ctx, wire.NewMsgGetCFilters(filterType, startHeight, stopHash))
}

// PopCFilterResp pops one queued CFilter message, assuming a prior GetCFilters call. There is no
// request counterpart checked here; interleaving responsibility is the caller's.
func (p *Peer) PopCFilterResp(timeout time.Duration) (*wire.MsgCFilter, error) {
	msg, ok := p.Recv(wire.CmdCFilter, timeout)
	if !ok {
		return nil, errors.Wrap(ErrTimeout, "cfilter")
	}

	filter, ok := msg.(*wire.MsgCFilter)
	if !ok {
		return nil, errors.Wrap(ErrInvalidResponse, "expected cfilter")
	}

	return filter, nil
}
