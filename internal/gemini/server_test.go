package gemini

import (
	"bufio"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"io"
	"math/big"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testServer is a minimal capsule: it reads one request line per connection
// and writes whatever the handler returns.
type testServer struct {
	ln      net.Listener
	cert    tls.Certificate
	handler func(req string) string

	mu       sync.Mutex
	requests []string
}

func newTestServer(t *testing.T, handler func(req string) string) *testServer {
	t.Helper()
	return newTestServerWithCert(t, selfSignedCert(t), handler)
}

func newTestServerWithCert(t *testing.T, cert tls.Certificate, handler func(req string) string) *testServer {
	t.Helper()
	config := tls.Config{Certificates: []tls.Certificate{cert}}
	ln, err := tls.Listen("tcp", "127.0.0.1:0", &config)
	require.NoError(t, err)

	s := &testServer{ln: ln, cert: cert, handler: handler}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *testServer) serve() {
	for {
		rw, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.serveConn(rw)
	}
}

func (s *testServer) serveConn(c net.Conn) {
	defer c.Close()
	buf := bufio.NewReader(c)
	data := make([]byte, 0, 1026) // 1024 for the URL, 2 for the CRLF
	for len(data) < 1026 {
		b, err := buf.ReadByte()
		if err != nil {
			return
		}
		data = append(data, b)
		if strings.HasSuffix(string(data), "\r\n") {
			break
		}
	}
	req := strings.TrimSuffix(string(data), "\r\n")

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	io.WriteString(c, s.handler(req))
}

func (s *testServer) Addr() string { return s.ln.Addr().String() }

func (s *testServer) URL(path string) string { return "gemini://" + s.Addr() + path }

func (s *testServer) Fingerprint() string { return Fingerprint(s.cert.Certificate[0]) }

func (s *testServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func selfSignedCert(t *testing.T) tls.Certificate {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
}
