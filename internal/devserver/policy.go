package devserver

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	KickPeer
)

// Policy decides what happens to a peer whose send queue is full.
type Policy interface {
	OnBackpressure(room *Room, p *Peer) BackpressureAction
}

// KickPolicy disconnects slow peers; their client redials and gets a fresh
// snapshot.
type KickPolicy struct{}

func (KickPolicy) OnBackpressure(*Room, *Peer) BackpressureAction { return KickPeer }

// DropPolicy keeps slow peers and loses the frame.
type DropPolicy struct{}

func (DropPolicy) OnBackpressure(*Room, *Peer) BackpressureAction { return DropFrame }
