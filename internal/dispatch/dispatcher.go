package dispatch

import (
	"github.com/artn/hgfsd/internal/hgfsproto"
	"github.com/artn/hgfsd/internal/hostfs"
	"github.com/artn/hgfsd/internal/metrics"
	"github.com/artn/hgfsd/internal/session"
	"github.com/artn/hgfsd/internal/shares"
)

// Dispatcher holds every piece of process-wide state a handler needs:
// the frozen share registry, the host-FS adapter, and the per-opcode
// version-negotiation table. It carries no per-session state; that lives
// on the *session.Session passed into Dispatch.
type Dispatcher struct {
	Shares            *shares.Registry
	FS                hostfs.FS
	Versions          *hgfsproto.VersionTable
	AlwaysUseHostTime bool
}

func New(reg *shares.Registry, fs hostfs.FS, alwaysUseHostTime bool) *Dispatcher {
	return &Dispatcher{
		Shares:            reg,
		FS:                fs,
		Versions:          hgfsproto.NewVersionTable(),
		AlwaysUseHostTime: alwaysUseHostTime,
	}
}

// Dispatch unpacks a request packet, routes it to the handler for its
// opcode, and packs the reply. It never panics on malformed input: a
// header or body that fails to unpack yields a ProtocolError reply rather
// than propagating an error to the transport (spec.md §4.7 step 1).
func (d *Dispatcher) Dispatch(sess *session.Session, packet []byte) []byte {
	hdr, body, err := hgfsproto.UnpackHeader(packet)
	if err != nil {
		metrics.RecordRequest("unknown", hgfsproto.StatusProtocolError.String())
		return hgfsproto.PackReply(hgfsproto.Header{}, hgfsproto.StatusProtocolError, nil)
	}

	status, replyBody := d.route(sess, hdr.Opcode, body)
	metrics.RecordRequest(hdr.Opcode.String(), status.String())
	sess.ReportMetrics()
	return hgfsproto.PackReply(hdr, status, replyBody)
}

func (d *Dispatcher) route(sess *session.Session, op hgfsproto.Opcode, body []byte) (hgfsproto.Status, []byte) {
	switch op {
	case hgfsproto.OpOpen:
		return d.handleOpen(sess, body)
	case hgfsproto.OpRead:
		return d.handleRead(sess, body)
	case hgfsproto.OpWrite, hgfsproto.OpStreamWrite:
		return d.handleWrite(sess, body)
	case hgfsproto.OpGetattr:
		return d.handleGetattr(sess, body)
	case hgfsproto.OpSetattr:
		return d.handleSetattr(sess, body)
	case hgfsproto.OpSearchOpen:
		return d.handleSearchOpen(sess, body)
	case hgfsproto.OpSearchRead:
		return d.handleSearchRead(sess, body)
	case hgfsproto.OpSearchClose:
		return d.handleSearchClose(sess, body)
	case hgfsproto.OpCreateDir:
		return d.handleCreateDir(sess, body)
	case hgfsproto.OpDelete:
		return d.handleDelete(sess, body)
	case hgfsproto.OpRename:
		return d.handleRename(sess, body)
	case hgfsproto.OpClose:
		return d.handleClose(sess, body)
	case hgfsproto.OpQueryVolume:
		return d.handleQueryVolume(sess, body)
	case hgfsproto.OpSymlinkCreate:
		return d.handleSymlinkCreate(sess, body)
	case hgfsproto.OpOplockChange:
		return d.handleOplockChange(sess, body)
	default:
		return hgfsproto.StatusProtocolError, nil
	}
}

// checkVersion implements the atomic version-negotiation cell (spec.md
// §4.2): a request declaring a version newer than what this opcode's cell
// currently accepts is rejected with ProtocolError, and the cell is
// dropped one step so the guest's retry at the lower version succeeds
// without a second round-trip (spec.md §8 scenario 6).
func (d *Dispatcher) checkVersion(op hgfsproto.Opcode, reqVersion hgfsproto.Version) bool {
	if reqVersion <= d.Versions.Current(op) {
		return true
	}
	d.Versions.Downgrade(op)
	return false
}
