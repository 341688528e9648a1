// Package irrd implements a client for the IRRd whois-style query
// protocol: a line-oriented, length-prefixed, pipelined request/response
// protocol used to resolve AS-sets, route-sets, and autonomous system
// numbers against an Internet Routing Registry mirror.
//
// Protocol reference: https://github.com/irrdnet/irrd COMMANDS.INFO.
package irrd

import (
	"bufio"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"fupd/pkg/model"
	"fupd/pkg/prefix"
)

// prefixT is the resolved-prefix element type returned by the route-set
// and autnum resolution calls.
type prefixT = netip.Prefix

const (
	// Timeout bounds every connect, read, and write on the session. It is
	// reapplied as an absolute deadline before each I/O call, emulating a
	// sliding per-operation timeout rather than one deadline for the
	// whole session.
	Timeout = 30 * time.Second

	clientName    = "fupd"
	clientVersion = "1.0"
)

// Client is a single IRRd session. It is not safe for concurrent use: the
// pipelined request/response protocol requires queries and their replies
// to stay strictly ordered on one connection.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
}

// Open connects to target (host:port, resolved via target.Dial semantics),
// sends the session's init lines, and returns a ready client. The init
// lines are buffered, not flushed — per the protocol, they are silently
// acknowledged inline with the first real query's replies.
func Open(target, sources string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", target, Timeout)
	if err != nil {
		return nil, &model.ConnectError{Addr: target, Err: err}
	}

	c := &Client{
		conn: conn,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
	}

	if _, err := fmt.Fprintf(c.w, "!!\n!n%s-%s\n!s%s\n", clientName, clientVersion, sources); err != nil {
		conn.Close()
		return nil, &model.IOError{Op: "write init lines", Err: err}
	}
	return c, nil
}

// Close sends the session teardown query and shuts down the connection.
// It is safe to call even if a prior operation already failed.
func (c *Client) Close() error {
	c.setWriteDeadline()
	if _, err := c.w.WriteString("!q\n"); err == nil {
		c.w.Flush()
	}
	return c.conn.Close()
}

func (c *Client) setReadDeadline()  { c.conn.SetReadDeadline(time.Now().Add(Timeout)) }
func (c *Client) setWriteDeadline() { c.conn.SetWriteDeadline(time.Now().Add(Timeout)) }

// readReply consumes one logical reply: zero or more 'A'-framed payloads
// terminated by a bare 'C', a bare 'D' (not found), a bare 'E' (multiple
// copies), or an 'F' (server-reported failure). It returns (nil, nil) for
// a clean "not found" and swallows any number of leading bare-'C' init
// acknowledgements before the first real reply.
func (c *Client) readReply() (*string, error) {
	var reply *string
	for {
		c.setReadDeadline()
		line, err := c.r.ReadString('\n')
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil, &model.TimeoutError{Op: "read reply", Err: err}
			}
			return nil, &model.IOError{Op: "read reply", Err: err}
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return nil, &model.ProtocolError{Reason: "short reply"}
		}

		code, rest := line[0], line[1:]
		switch code {
		case 'A':
			n, err := strconv.Atoi(rest)
			if err != nil {
				return nil, &model.ProtocolError{Reason: "bad length prefix: " + rest}
			}
			// content_len counts the payload bytes as the server sent them,
			// including their own trailing newline — there is no separate
			// terminator to consume afterward.
			body := make([]byte, n)
			c.setReadDeadline()
			if _, err := readFull(c.r, body); err != nil {
				return nil, &model.IOError{Op: "read payload", Err: err}
			}
			s := string(body)
			reply = &s
		case 'C':
			if rest != "" {
				return nil, &model.ProtocolError{Reason: "invalid reply: C" + rest}
			}
			if reply != nil {
				return reply, nil
			}
			// bare C with no preceding A: an init-line acknowledgement, keep reading
		case 'D':
			if rest != "" {
				return nil, &model.ProtocolError{Reason: "invalid reply: D" + rest}
			}
			return nil, nil
		case 'E':
			if rest != "" {
				return nil, &model.ProtocolError{Reason: "invalid reply: E" + rest}
			}
			return nil, model.ErrMultipleCopies()
		case 'F':
			return nil, &model.ServerError{Message: rest}
		default:
			return nil, &model.ProtocolError{Reason: fmt.Sprintf("invalid reply: %q => %q", string(code), rest)}
		}
	}
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ResolveAsSets resolves each named AS-set to its member autonomous
// system numbers, dropping reserved/private ASNs from each result. Every
// set is queried in one pipelined batch: all "!i<set>,1" lines are
// written and flushed together, then replies are read back in the same
// order the sets were given.
func (c *Client) ResolveAsSets(sets []string) (map[string][]uint32, error) {
	for _, set := range sets {
		if _, err := fmt.Fprintf(c.w, "!i%s,1\n", set); err != nil {
			return nil, &model.IOError{Op: "write query", Err: err}
		}
	}
	c.setWriteDeadline()
	if err := c.w.Flush(); err != nil {
		return nil, &model.IOError{Op: "flush", Err: err}
	}

	ret := make(map[string][]uint32, len(sets))
	for _, set := range sets {
		var autnums []uint32
		reply, err := c.readReply()
		if err != nil {
			return nil, err
		}
		if reply != nil {
			for _, tok := range strings.Fields(*reply) {
				n, err := prefix.ParseAutnum(tok)
				if err != nil {
					return nil, &model.ProtocolError{Reason: err.Error()}
				}
				if model.IsReservedAutnum(n) {
					continue
				}
				autnums = append(autnums, n)
			}
		}
		ret[set] = autnums
	}
	return ret, nil
}

// ResolveRouteSets resolves each named route-set to its member prefixes,
// in the same one-batch-then-drain-in-order shape as ResolveAsSets.
func (c *Client) ResolveRouteSets(sets []string) (map[string][]prefixT, error) {
	for _, set := range sets {
		if _, err := fmt.Fprintf(c.w, "!i%s,1\n", set); err != nil {
			return nil, &model.IOError{Op: "write query", Err: err}
		}
	}
	c.setWriteDeadline()
	if err := c.w.Flush(); err != nil {
		return nil, &model.IOError{Op: "flush", Err: err}
	}

	ret := make(map[string][]prefixT, len(sets))
	for _, set := range sets {
		var prefixes []prefixT
		reply, err := c.readReply()
		if err != nil {
			return nil, err
		}
		if reply != nil {
			for _, tok := range strings.Fields(*reply) {
				p, err := prefix.ParsePrefix(tok)
				if err != nil {
					return nil, &model.ProtocolError{Reason: err.Error()}
				}
				prefixes = append(prefixes, p)
			}
		}
		ret[set] = prefixes
	}
	return ret, nil
}

// ResolveAutnums resolves each ASN's directly announced prefixes via a
// paired "!gas<n>" (IPv4) / "!6as<n>" (IPv6) query. Both queries for every
// ASN are written and flushed as a single batch, then the two replies per
// ASN are drained in order. A reply whose family does not match the query
// that produced it is a Protocol error, not an assertion failure — a
// conformant server never triggers this path.
func (c *Client) ResolveAutnums(autnums []uint32) (map[uint32][]prefixT, error) {
	for _, n := range autnums {
		if _, err := fmt.Fprintf(c.w, "!gas%d\n!6as%d\n", n, n); err != nil {
			return nil, &model.IOError{Op: "write query", Err: err}
		}
	}
	c.setWriteDeadline()
	if err := c.w.Flush(); err != nil {
		return nil, &model.IOError{Op: "flush", Err: err}
	}

	ret := make(map[uint32][]prefixT, len(autnums))
	for _, n := range autnums {
		var prefixes []prefixT
		for _, wantV6 := range []bool{false, true} {
			reply, err := c.readReply()
			if err != nil {
				return nil, err
			}
			if reply == nil {
				continue
			}
			for _, tok := range strings.Fields(*reply) {
				p, err := prefix.ParsePrefix(tok)
				if err != nil {
					return nil, &model.ProtocolError{Reason: err.Error()}
				}
				if p.Addr().Is6() != wantV6 {
					return nil, &model.ProtocolError{
						Reason: fmt.Sprintf("AS%d: reply family mismatch for %s", n, tok),
					}
				}
				prefixes = append(prefixes, p)
			}
		}
		ret[n] = prefixes
	}
	return ret, nil
}
