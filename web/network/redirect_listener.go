// Package network holds listener helpers for the HTTPS server.
package network

import (
	"bufio"
	"bytes"
	"net"
	"net/http"
	"sync"
)

// RedirectListener wraps the raw TCP listener under a TLS listener. A client
// that speaks plain HTTP to the TLS port gets a 307 to the https URL instead
// of a handshake error.
type RedirectListener struct {
	net.Listener
}

func NewRedirectListener(l net.Listener) net.Listener {
	return &RedirectListener{Listener: l}
}

func (l *RedirectListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return &redirectConn{Conn: conn}, nil
}

type redirectConn struct {
	net.Conn

	once    sync.Once
	pending []byte
}

// sniff reads the first packet. A TLS ClientHello is kept for the caller;
// a plain HTTP request is answered with a redirect and the conn closed.
func (c *redirectConn) sniff() {
	buf := make([]byte, 2048)
	n, err := c.Conn.Read(buf)
	if err != nil {
		return
	}
	c.pending = buf[:n]

	req, err := http.ReadRequest(bufio.NewReader(bytes.NewReader(c.pending)))
	if err != nil {
		return
	}
	resp := &http.Response{
		StatusCode: http.StatusTemporaryRedirect,
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{"Location": {"https://" + req.Host + req.RequestURI}},
	}
	_ = resp.Write(c.Conn)
	_ = c.Conn.Close()
	c.pending = nil
}

func (c *redirectConn) Read(b []byte) (int, error) {
	c.once.Do(c.sniff)
	if len(c.pending) > 0 {
		n := copy(b, c.pending)
		c.pending = c.pending[n:]
		return n, nil
	}
	return c.Conn.Read(b)
}
