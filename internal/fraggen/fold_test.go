package fraggen

import (
	"encoding/binary"
	"math"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// startFoldServer runs a single-endpoint fake of the folding service and
// returns its address plus an accessor for the requests it saw. Each
// request is answered with the given energy.
func startFoldServer(t *testing.T, energy float32) (string, func() []string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	var mu sync.Mutex
	var requests []string

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				buf := make([]byte, 4096)
				for {
					n, err := c.Read(buf)
					if err != nil {
						return
					}
					mu.Lock()
					requests = append(requests, string(buf[:n]))
					mu.Unlock()

					var out [4]byte
					binary.LittleEndian.PutUint32(out[:], math.Float32bits(energy))
					if _, err := c.Write(out[:]); err != nil {
						return
					}
				}
			}(conn)
		}
	}()

	return ln.Addr().String(), func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), requests...)
	}
}

func Test_FoldClient_Energy(t *testing.T) {
	addr, requests := startFoldServer(t, -2.5)

	client, err := dialFoldAddrs([]string{addr}, 25.0)
	require.NoError(t, err)
	defer client.Close()

	dg, err := client.Energy("ACGTACGT")
	require.NoError(t, err)
	require.InDelta(t, -2.5, dg, 1e-6)

	// the connection is reused across queries
	dg, err = client.Energy("TTTTAAAA")
	require.NoError(t, err)
	require.InDelta(t, -2.5, dg, 1e-6)

	seen := requests()
	require.Len(t, seen, 2)
	parts := strings.SplitN(seen[0], ",", 2)
	require.Equal(t, "ACGTACGT", parts[0])
	require.Equal(t, "25", parts[1])
}

func Test_FoldClient_rejects_nan(t *testing.T) {
	addr, _ := startFoldServer(t, float32(math.NaN()))

	client, err := dialFoldAddrs([]string{addr}, 25.0)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Energy("ACGT")
	require.Error(t, err)
	require.True(t, ErrFolding.Has(err))
}

func Test_FoldClient_dial_failure(t *testing.T) {
	// grab a port and close it so nothing listens there
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = dialFoldAddrs([]string{addr}, 25.0)
	require.Error(t, err)
	require.True(t, ErrFolding.Has(err))
}

// an endpoint that accepts the connection but never answers must fail
// the query at the deadline instead of blocking the worker forever.
func Test_FoldClient_stalled_endpoint_times_out(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	var mu sync.Mutex
	var stalled []net.Conn
	t.Cleanup(func() {
		mu.Lock()
		defer mu.Unlock()
		for _, c := range stalled {
			c.Close()
		}
	})
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			stalled = append(stalled, conn)
			mu.Unlock()
		}
	}()

	client, err := dialFoldAddrs([]string{ln.Addr().String()}, 25.0)
	require.NoError(t, err)
	defer client.Close()
	client.timeout = 50 * time.Millisecond

	start := time.Now()
	_, err = client.Energy("ACGT")
	require.Error(t, err)
	require.True(t, ErrFolding.Has(err))
	require.Less(t, time.Since(start), 5*time.Second)
}

func Test_FoldClient_redials_broken_connection(t *testing.T) {
	addr, _ := startFoldServer(t, 1.5)

	client, err := dialFoldAddrs([]string{addr}, 25.0)
	require.NoError(t, err)
	defer client.Close()

	// break the pooled connection behind the client's back
	fc := <-client.pool
	fc.conn.Close()
	fc.conn = nil
	client.pool <- fc

	dg, err := client.Energy("ACGT")
	require.NoError(t, err)
	require.InDelta(t, 1.5, dg, 1e-6)
}

func Test_FoldClient_concurrent_queries(t *testing.T) {
	addr1, _ := startFoldServer(t, -1)
	addr2, _ := startFoldServer(t, -1)

	client, err := dialFoldAddrs([]string{addr1, addr2}, 37.0)
	require.NoError(t, err)
	defer client.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 4; i++ {
				if _, err := client.Energy("ACGTACGTACGT"); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent query failed: %v", err)
	}
}
