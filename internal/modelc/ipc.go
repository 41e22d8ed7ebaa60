package modelc

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/grthilak-rl/vas-kernel/internal/platform/paths"
	"github.com/grthilak-rl/vas-kernel/pkg/wire"
)

// MaxMessageSize rejects any message longer than 10 MiB on read.
const MaxMessageSize = 10 * 1024 * 1024

// SocketPath returns <scratch root>/vas_model_<model_id>.sock.
func SocketPath(modelID string) string {
	name := fmt.Sprintf("vas_model_%s.sock", modelID)
	p, err := paths.SafeJoin(paths.ResolveScratchRoot(), name)
	if err != nil {
		return filepath.Join(paths.ResolveScratchRoot(), name)
	}
	return p
}

// ErrMessageTooLarge is returned when a framed message exceeds MaxMessageSize.
var ErrMessageTooLarge = errors.New("modelc: message exceeds maximum size")

// IPCServer listens on a Unix stream socket, framing each connection's
// single request/response as a 4-byte big-endian length prefix followed by
// JSON. It holds no per-camera or per-request state; it only owns the
// listener and a reference to the stateless handler.
type IPCServer struct {
	socketPath string
	handler    *InferenceHandler
	listener   net.Listener
	nc         *nats.Conn
}

// IPCOption configures optional IPCServer dependencies.
type IPCOption func(*IPCServer)

// WithNATS attaches a NATS connection the server publishes each response's
// detections on, in addition to the synchronous IPC reply. Publish failures
// are logged, never raised: NATS is an optional fan-out.
func WithNATS(nc *nats.Conn) IPCOption {
	return func(s *IPCServer) { s.nc = nc }
}

// NewIPCServer builds a server for a model's socket.
func NewIPCServer(modelID string, handler *InferenceHandler, opts ...IPCOption) *IPCServer {
	s := &IPCServer{socketPath: SocketPath(modelID), handler: handler}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listen removes a stale socket file, binds, and sets 0600 permissions. The
// listen backlog is not set: net.Listen on a Unix socket has no backlog knob
// in the standard library, so the kernel default is used rather than 5.
func (s *IPCServer) Listen() error {
	if _, err := os.Stat(s.socketPath); err == nil {
		if err := os.Remove(s.socketPath); err != nil {
			return fmt.Errorf("remove stale socket: %w", err)
		}
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.socketPath, err)
	}
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		ln.Close()
		return fmt.Errorf("chmod %s: %w", s.socketPath, err)
	}
	s.listener = ln
	return nil
}

// Serve runs the accept loop until the listener is closed. Each connection
// is handled in its own goroutine; a failure on one connection never
// affects another (spec's failure isolation).
func (s *IPCServer) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("[ModelContainer] accept error: %v", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

// Close shuts down the listener and removes the socket file.
func (s *IPCServer) Close() error {
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	os.Remove(s.socketPath)
	return err
}

func (s *IPCServer) handleConnection(conn net.Conn) {
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ModelContainer] connection handler panic: %v", r)
		}
	}()

	payload, err := readFramed(conn)
	if err != nil {
		log.Printf("[ModelContainer] read failed: %v", err)
		return
	}

	var req wire.InferenceRequest
	if err := json.Unmarshal(payload, &req); err != nil || !req.Valid() {
		// Bad request per the wire contract: close without replying.
		log.Printf("[ModelContainer] malformed or invalid request, closing connection")
		return
	}

	resp := s.handler.Handle(req)
	s.publishDetection(resp)
	if err := writeFramed(conn, mustMarshal(resp)); err != nil {
		log.Printf("[ModelContainer] write failed: %v", err)
	}
}

// publishDetection fans a response out to detections.<model_id>.<camera_id>
// for subscribers that want detections without dialing the UDS socket
// themselves. A no-op when no NATS connection is attached.
func (s *IPCServer) publishDetection(resp wire.InferenceResponse) {
	if s.nc == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		log.Printf("[ModelContainer] detection publish marshal failed: %v", err)
		return
	}
	subject := fmt.Sprintf("detections.%s.%s", resp.ModelID, resp.CameraID)
	if err := s.nc.Publish(subject, data); err != nil {
		log.Printf("[ModelContainer] detection publish failed: %v", err)
	}
}

func readFramed(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(lenBuf[:])
	if size > MaxMessageSize {
		return nil, ErrMessageTooLarge
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeFramed(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		// Only the fixed InferenceResponse shape is ever marshaled here;
		// a marshal failure would mean a programmer error in that type.
		log.Printf("[ModelContainer] marshal failed: %v", err)
		return []byte("{}")
	}
	return data
}

// dialTimeout is used by the tests that dial the socket.
const dialTimeout = 5 * time.Second
