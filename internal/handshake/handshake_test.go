package handshake

import (
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexhub/securelink/internal/bigint"
	"github.com/vertexhub/securelink/internal/session"
	"github.com/vertexhub/securelink/internal/wire"
)

// sessionPair connects two Sessions over a real local stream socket. A
// kernel-buffered socketpair is required here rather than net.Pipe: both DH
// peers send their public value before receiving, which deadlocks on a
// fully synchronous in-memory pipe.
func sessionPair(t *testing.T) (client, server *session.Session) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "handshake.sock")

	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	acceptErr := make(chan error, 1)
	go func() {
		c, err := ln.Accept()
		accepted <- c
		acceptErr <- err
	}()

	clientConn, err := net.Dial("unix", path)
	require.NoError(t, err)
	serverConn := <-accepted
	require.NoError(t, <-acceptErr)

	t.Cleanup(func() {
		clientConn.Close()
		serverConn.Close()
	})
	return session.New(clientConn), session.New(serverConn)
}

func smallDHParams(t *testing.T) (generator, modulus *bigint.Int) {
	t.Helper()
	// A small prime modulus is enough to exercise the exchange;
	// the real protocol uses the 1536-bit group 5 prime from internal/params.
	modulus, err := bigint.FromDecimalString("2357")
	require.NoError(t, err)
	generator, err = bigint.FromDecimalString("2")
	require.NoError(t, err)
	return generator, modulus
}

func TestAgreeKeyProducesMatchingKeys(t *testing.T) {
	cs, ss := sessionPair(t)

	generator, modulus := smallDHParams(t)

	clientKey := make(chan []byte, 1)
	clientErr := make(chan error, 1)
	go func() {
		k, err := AgreeKey(cs, generator, modulus)
		clientKey <- k
		clientErr <- err
	}()

	serverKey, err := AgreeKey(ss, generator, modulus)
	require.NoError(t, err)
	require.NoError(t, <-clientErr)

	assert.Equal(t, <-clientKey, serverKey)
	assert.Len(t, serverKey, 32)
}

func ffsTestModulus(t *testing.T) (*bigint.Int, []*bigint.Int) {
	t.Helper()
	// N=7387 is the product of the primes p=83 and q=89, small enough for a
	// fast test fixture. It is not a Blum integer (89 is 1 mod 4); an honest
	// round only needs each private element to be coprime to N.
	modulus, err := bigint.FromDecimalString("7387")
	require.NoError(t, err)

	rawPrivate := []string{"123", "456", "789", "1011", "1213"}
	private := make([]*bigint.Int, len(rawPrivate))
	for i, s := range rawPrivate {
		v, err := bigint.FromDecimalString(s)
		require.NoError(t, err)
		private[i] = v
	}
	return modulus, private
}

func TestFFSRoundAcceptsGenuineProver(t *testing.T) {
	cs, ss := sessionPair(t)

	modulus, private := ffsTestModulus(t)

	proveErr := make(chan error, 1)
	go func() {
		proveErr <- Prove(cs, modulus, private)
	}()

	ok, err := Verify(ss, modulus, len(private))
	require.NoError(t, err)
	require.NoError(t, <-proveErr)
	assert.True(t, ok)
}

// TestFFSRoundRejectsForgedEvidence drives a dishonest prover that ignores
// the verifier's challenge and answers with evidence that never involves
// the private key elements.
// Forgery has to happen at the evidence step specifically: the public
// vector and witness are standalone commitments valid for any s_i coprime
// to the modulus, so only a wrong answer to the challenge itself can be
// told apart from a genuine proof.
func TestFFSRoundRejectsForgedEvidence(t *testing.T) {
	cs, ss := sessionPair(t)

	modulus, private := ffsTestModulus(t)

	proveErr := make(chan error, 1)
	go func() {
		proveErr <- dishonestProve(cs, modulus, private)
	}()

	ok, err := Verify(ss, modulus, len(private))
	require.NoError(t, err)
	require.NoError(t, <-proveErr)
	assert.False(t, ok)
}

// dishonestProve sends the same public vector as Prove and a witness
// r^2 mod N (always positive), reads the challenge without using it, and
// answers with r+1 instead of r times the challenged private key elements.
func dishonestProve(sess *session.Session, modulus *bigint.Int, privateKey []*bigint.Int) error {
	signs, err := RandomBits(len(privateKey))
	if err != nil {
		return err
	}

	for i, s := range privateKey {
		sSq, err := s.RaiseMod(two, modulus)
		if err != nil {
			return err
		}
		sSqInv, err := sSq.InvertMod(modulus)
		if err != nil {
			return err
		}
		v := sSqInv
		if signs.Get(i) {
			v = sSqInv.Neg()
		}
		if _, err := sess.Send(v); err != nil {
			return err
		}
	}

	secretR, err := bigint.Random(modulus.NumBits() - 1)
	if err != nil {
		return err
	}
	witness, err := secretR.RaiseMod(two, modulus)
	if err != nil {
		return err
	}
	if _, err := sess.Send(witness); err != nil {
		return err
	}

	if _, err := sess.Receive(func(m *wire.Message) (any, error) {
		return m.ReadBitSet()
	}); err != nil {
		return err
	}

	forgedEvidence := secretR.Sub(bigint.FromInt64(-1))
	_, err = sess.Send(forgedEvidence)
	return err
}
