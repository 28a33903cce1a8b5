package gopher

import (
	"bufio"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	proto "github.com/stryan/go-gopher"
	"github.com/stretchr/testify/require"
)

// rawServer answers every connection with whatever reply returns for the
// request line. When hold is set the connection stays open after the reply
// until hold is closed.
type rawServer struct {
	ln    net.Listener
	reply func(req string) string
	hold  chan struct{}

	mu       sync.Mutex
	requests []string
}

func newRawServer(t *testing.T, reply func(req string) string) *rawServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &rawServer{ln: ln, reply: reply}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

// newStallingServer writes the reply and then keeps the connection open.
func newStallingServer(t *testing.T, reply func(req string) string) *rawServer {
	t.Helper()
	s := newRawServer(t, reply)
	s.hold = make(chan struct{})
	t.Cleanup(func() { close(s.hold) })
	return s
}

func (s *rawServer) serve() {
	for {
		rw, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.serveConn(rw)
	}
}

func (s *rawServer) serveConn(c net.Conn) {
	defer c.Close()
	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		return
	}
	req := strings.TrimSuffix(line, "\r\n")

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	io.WriteString(c, s.reply(req))
	if s.hold != nil {
		<-s.hold
	}
}

func (s *rawServer) URL(path string) string { return "gopher://" + s.ln.Addr().String() + path }

func (s *rawServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// holeHandler serves a file tree and prefixes every listing other than the
// root menu with a link back to it.
type holeHandler struct {
	files proto.Handler
}

func (h holeHandler) ServeGopher(w proto.ResponseWriter, r *proto.Request) {
	if sel := strings.TrimSuffix(r.Selector, "/"); sel != "" && !strings.Contains(path.Base(sel), ".") {
		w.WriteItem(&proto.Item{Type: proto.DIRECTORY, Selector: "/", Description: "Back to root"})
	}
	h.files.ServeGopher(w, r)
}

// newHoleServer serves the files under root with the go-gopher file server
// and returns its host:port.
func newHoleServer(t *testing.T, root string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	go proto.ListenAndServe(host, host, port, holeHandler{files: proto.FileServer(proto.Dir(root))})

	require.Eventually(t, func() bool {
		c, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		c.Close()
		return true
	}, 5*time.Second, 20*time.Millisecond)
	return addr
}

func writeHole(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "about.txt"), []byte("hello gopher\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "guide.txt"), []byte("read me\n"), 0o644))
	return root
}
