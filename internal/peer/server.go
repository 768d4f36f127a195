package peer

import (
	"errors"
	"fmt"
	"net"
	"os"

	"go.uber.org/zap"

	"github.com/vertexhub/securelink/internal/digest"
	"github.com/vertexhub/securelink/internal/handshake"
	"github.com/vertexhub/securelink/internal/params"
	"github.com/vertexhub/securelink/internal/session"
	"github.com/vertexhub/securelink/internal/wire"
)

// Server is the accepting peer: it owns the socket endpoint file, runs the
// DH handshake (sending its public value, then reading the client's),
// verifies the client's FFS identity for
// params.AuthenticationRounds rounds, then loops receiving application
// strings and echoing their digest back.
type Server struct {
	socketPath string
	logger     *zap.SugaredLogger

	statusBox
}

// NewServer builds a Server bound to socketPath, not yet listening.
func NewServer(socketPath string, logger *zap.SugaredLogger) *Server {
	return &Server{socketPath: socketPath, logger: logger}
}

// Status returns a snapshot of the server's current lifecycle state.
func (s *Server) Status() Status {
	return s.get()
}

// Start removes any stale socket endpoint file left by a prior crashed run,
// binds and listens, and accepts exactly one connection, then drives it
// through the full handshake, authentication, and application loop to
// completion.
func (s *Server) Start() error {
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("peer: removing stale socket %s: %w", s.socketPath, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("peer: listening on %s: %w", s.socketPath, err)
	}
	defer listener.Close()
	defer os.Remove(s.socketPath)

	s.logger.Infof("Listening on %s", s.socketPath)
	conn, err := listener.Accept()
	if err != nil {
		return fmt.Errorf("peer: accepting connection: %w", err)
	}
	s.setState(StateConnected)
	s.logger.Info("Client connected")

	sess := session.New(conn)
	defer sess.Close()

	if err := s.runSession(sess); err != nil {
		s.setFailed(err)
		s.logger.Errorf("Session failed: %v", err)
		return err
	}
	s.setState(StateClosed)
	return nil
}

func (s *Server) runSession(sess *session.Session) error {
	key, err := handshake.AgreeKey(sess, params.DHGenerator, params.DHModulus)
	if err != nil {
		return fmt.Errorf("peer: DH key agreement: %w", err)
	}
	if err := handshake.InstallCipher(sess, key); err != nil {
		return err
	}
	s.setState(StateKeyAgreed)
	s.logger.Info("Key agreed, channel secured")

	for round := 1; round <= params.AuthenticationRounds; round++ {
		ok, err := handshake.Verify(sess, params.FFSModulus, params.KeyElementCount)
		if err != nil {
			return fmt.Errorf("peer: FFS round %d: %w", round, err)
		}
		if !ok {
			s.logger.Errorf("FAIL: authentication round %d rejected", round)
			return fmt.Errorf("peer: client failed FFS round %d", round)
		}
		s.incRounds()
	}
	s.setState(StateAuthenticated)
	s.logger.Info("Client authenticated")
	s.setState(StateOpen)

	return s.echoLoop(sess)
}

// echoLoop receives application strings, prints each with its digest, and
// echoes the digest of the received frame back to the client.
func (s *Server) echoLoop(sess *session.Session) error {
	for {
		result, err := sess.Receive(func(m *wire.Message) (any, error) {
			text, err := m.ReadString()
			if err != nil {
				return nil, err
			}
			sum, err := wire.HashOf(m)
			if err != nil {
				return nil, err
			}
			return echoResult{text: text, digest: sum}, nil
		})
		if err != nil {
			if errors.Is(err, session.ErrConnectionClosed) {
				return nil
			}
			return err
		}

		er := result.(echoResult)
		fmt.Printf("Received: %s (%s)\n", er.text, digest.ToHex(er.digest))
		s.logger.Infof("Received: %s (%s)", er.text, digest.ToHex(er.digest))
		s.incMessages()

		if _, err := sess.Send(er.digest[:]); err != nil {
			return err
		}
	}
}

type echoResult struct {
	text   string
	digest [32]byte
}
