package fraggen

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"net"
	"strconv"
	"time"
)

// dialTimeout bounds the initial connection to each folding endpoint.
const dialTimeout = 3 * time.Second

// queryTimeout bounds one Energy round trip, so an endpoint that accepts
// but never answers cannot block a worker forever.
const queryTimeout = 30 * time.Second

// foldConn is one endpoint channel. The address is kept so a broken
// connection can be redialed in place.
type foldConn struct {
	addr string
	conn net.Conn
}

// FoldClient queries the secondary-structure server for minimum free
// energy estimates. The server listens on one port per hardware thread
// (base port plus offset); the client keeps one connection per port in a
// channel so concurrent workers spread across all endpoints without any
// one becoming a bottleneck.
type FoldClient struct {
	pool chan *foldConn

	// Temp is the temperature (celsius) sent with every query
	Temp float64

	timeout time.Duration
}

// DialFold connects to count endpoints starting at basePort. All
// endpoints must answer or the dial fails: a partially reachable server
// would silently serialize the worker pool.
func DialFold(host string, basePort, count int, temp float64) (*FoldClient, error) {
	if count < 1 {
		return nil, ErrFolding.New("endpoint count must be positive, got %d", count)
	}

	addrs := make([]string, 0, count)
	for port := basePort; port < basePort+count; port++ {
		addrs = append(addrs, net.JoinHostPort(host, strconv.Itoa(port)))
	}

	return dialFoldAddrs(addrs, temp)
}

// dialFoldAddrs connects to an explicit endpoint list.
func dialFoldAddrs(addrs []string, temp float64) (*FoldClient, error) {
	pool := make(chan *foldConn, len(addrs))
	for _, addr := range addrs {
		conn, err := net.DialTimeout("tcp", addr, dialTimeout)
		if err != nil {
			return nil, ErrFolding.New("failed to connect to %s: %v", addr, err)
		}
		pool <- &foldConn{addr: addr, conn: conn}
	}

	return &FoldClient{pool: pool, Temp: temp, timeout: queryTimeout}, nil
}

// Energy is the predicted minimum free energy of seq's secondary
// structure. The request carries "SEQ,temp"; the response is a 4-byte
// little-endian float32. A transport failure is returned as an
// ErrFolding, never as an energy.
func (c *FoldClient) Energy(seq string) (float64, error) {
	fc := <-c.pool
	defer func() { c.pool <- fc }()

	if fc.conn == nil {
		// a previous request broke this channel; redial before using it
		conn, err := net.DialTimeout("tcp", fc.addr, dialTimeout)
		if err != nil {
			return 0, ErrFolding.New("failed to reconnect to %s: %v", fc.addr, err)
		}
		fc.conn = conn
	}

	req := make([]byte, 0, len(seq)+16)
	req = append(req, seq...)
	req = append(req, ',')
	req = strconv.AppendFloat(req, c.Temp, 'f', -1, 32)

	if err := fc.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		fc.conn.Close()
		fc.conn = nil
		return 0, ErrFolding.New("failed to set deadline on %s: %v", fc.addr, err)
	}

	if _, err := fc.conn.Write(req); err != nil {
		fc.conn.Close()
		fc.conn = nil
		return 0, ErrFolding.New("failed to send query to %s: %v", fc.addr, err)
	}

	var buf [4]byte
	if _, err := io.ReadFull(fc.conn, buf[:]); err != nil {
		fc.conn.Close()
		fc.conn = nil
		return 0, ErrFolding.New("failed to read energy from %s: %v", fc.addr, err)
	}

	dg := math.Float32frombits(binary.LittleEndian.Uint32(buf[:]))
	if math.IsNaN(float64(dg)) {
		return 0, ErrFolding.New("endpoint %s returned NaN", fc.addr)
	}

	return float64(dg), nil
}

// Close shuts every endpoint connection down.
func (c *FoldClient) Close() error {
	var firstErr error
	for i := 0; i < cap(c.pool); i++ {
		fc := <-c.pool
		if fc.conn == nil {
			continue
		}
		if err := fc.conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close %s: %v", fc.addr, err)
		}
	}

	return firstErr
}

// foldError converts a free energy to the rejection score: low (stable)
// energies approach 1, unstable ones approach 0.
func foldError(dg float64) float64 {
	err := 1 / (1 + math.Exp(dg+4))
	if math.IsNaN(err) || math.IsInf(err, 0) {
		return 0
	}

	return err
}
