package peer

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"

	"go.uber.org/zap"

	"github.com/vertexhub/securelink/internal/handshake"
	"github.com/vertexhub/securelink/internal/params"
	"github.com/vertexhub/securelink/internal/session"
	"github.com/vertexhub/securelink/internal/wire"
)

// ErrUnableToConnect is returned when the client cannot reach the server's
// socket endpoint.
var ErrUnableToConnect = errors.New("peer: unable to connect")

// Client is the connecting peer: it runs the same DH exchange as the server
// (send its public value, then read the server's), proves
// its FFS identity for params.AuthenticationRounds rounds, then reads lines
// from an injected reader and verifies the server's echoed digest of each.
type Client struct {
	socketPath string
	logger     *zap.SugaredLogger
	input      io.Reader

	statusBox
}

// NewClient builds a Client that will dial socketPath and read application
// lines from input (typically os.Stdin in the CLI entrypoint).
func NewClient(socketPath string, input io.Reader, logger *zap.SugaredLogger) *Client {
	return &Client{socketPath: socketPath, input: input, logger: logger}
}

// Status returns a snapshot of the client's current lifecycle state.
func (c *Client) Status() Status {
	return c.get()
}

// Start dials the server, runs the handshake and authentication, then
// drives the send/verify application loop to completion.
func (c *Client) Start() error {
	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnableToConnect, err)
	}
	c.setState(StateConnected)
	c.logger.Info("Connected to server")

	sess := session.New(conn)
	defer sess.Close()

	if err := c.runSession(sess); err != nil {
		c.setFailed(err)
		c.logger.Errorf("Session failed: %v", err)
		return err
	}
	c.setState(StateClosed)
	return nil
}

func (c *Client) runSession(sess *session.Session) error {
	key, err := handshake.AgreeKey(sess, params.DHGenerator, params.DHModulus)
	if err != nil {
		return fmt.Errorf("peer: DH key agreement: %w", err)
	}
	if err := handshake.InstallCipher(sess, key); err != nil {
		return err
	}
	c.setState(StateKeyAgreed)
	c.logger.Info("Key agreed, channel secured")

	for round := 1; round <= params.AuthenticationRounds; round++ {
		if err := handshake.Prove(sess, params.FFSModulus, params.FFSPrivate); err != nil {
			return fmt.Errorf("peer: FFS round %d: %w", round, err)
		}
		c.incRounds()
	}
	c.setState(StateAuthenticated)
	c.logger.Info("Authenticated")
	c.setState(StateOpen)

	return c.sendLoop(sess)
}

// sendLoop reads one line at a time from c.input, sends it, and compares
// the server's echoed digest against the digest of the frame actually sent,
// printing OK or MISMATCH for each.
func (c *Client) sendLoop(sess *session.Session) error {
	scanner := bufio.NewScanner(c.input)
	for scanner.Scan() {
		line := scanner.Text()

		sent, err := sess.Send(line)
		if err != nil {
			return err
		}
		expected, err := wire.HashOf(sent)
		if err != nil {
			return err
		}

		fmt.Printf("Sent: %s\n", line)
		c.incMessages()

		got, err := sess.Receive(func(m *wire.Message) (any, error) {
			return m.ReadByteSequence()
		})
		if err != nil {
			if errors.Is(err, session.ErrConnectionClosed) {
				return nil
			}
			return err
		}

		if bytes.Equal(got.([]byte), expected[:]) {
			fmt.Println("OK")
		} else {
			fmt.Println("MISMATCH")
		}
	}
	return scanner.Err()
}
