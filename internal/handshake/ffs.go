package handshake

import (
	"github.com/vertexhub/securelink/internal/bigint"
	"github.com/vertexhub/securelink/internal/session"
	"github.com/vertexhub/securelink/internal/wire"
)

var two = bigint.FromInt64(2)

// Prove runs the prover's side of one Feige-Fiat-Shamir round over sess:
// it sends a freshly re-randomized sign on each public key element, sends a
// witness, waits for the verifier's challenge bit vector, and answers with
// the evidence. Callers run it once per authentication round; nothing is
// cached across rounds, the public vector is re-derived every call.
func Prove(sess *session.Session, modulus *bigint.Int, privateKey []*bigint.Int) error {
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
	witnessSign, err := RandomBits(1)
	if err != nil {
		return err
	}
	toSend := witness
	if witnessSign.Get(0) {
		toSend = witness.Neg()
	}
	if _, err := sess.Send(toSend); err != nil {
		return err
	}

	used, err := sess.Receive(func(m *wire.Message) (any, error) {
		return m.ReadBitSet()
	})
	if err != nil {
		return err
	}
	usedBits := used.(wire.BitSet)

	evidence := secretR
	for i := 0; i < usedBits.Len(); i++ {
		if usedBits.Get(i) {
			evidence = evidence.Mul(privateKey[i]).Mod(modulus)
		}
	}
	_, err = sess.Send(evidence)
	return err
}

// Verify runs the verifier's side of one round: it collects the prover's
// public key vector and witness, issues a random challenge, and checks the
// returned evidence squares back to the witness (up to sign).
func Verify(sess *session.Session, modulus *bigint.Int, keyElementCount int) (bool, error) {
	v := make([]*bigint.Int, keyElementCount)
	for i := range v {
		got, err := sess.Receive(func(m *wire.Message) (any, error) {
			return m.ReadBigInt()
		})
		if err != nil {
			return false, err
		}
		v[i] = got.(*bigint.Int)
	}

	witnessVal, err := sess.Receive(func(m *wire.Message) (any, error) {
		return m.ReadBigInt()
	})
	if err != nil {
		return false, err
	}
	witness := witnessVal.(*bigint.Int)

	used, err := RandomBits(keyElementCount)
	if err != nil {
		return false, err
	}
	if _, err := sess.Send(used); err != nil {
		return false, err
	}

	evidenceVal, err := sess.Receive(func(m *wire.Message) (any, error) {
		return m.ReadBigInt()
	})
	if err != nil {
		return false, err
	}
	evidence := evidenceVal.(*bigint.Int)

	finalValue, err := evidence.RaiseMod(two, modulus)
	if err != nil {
		return false, err
	}
	for i := 0; i < used.Len(); i++ {
		if used.Get(i) {
			finalValue = finalValue.Mul(v[i]).Mod(modulus)
		}
	}

	ok := !witness.IsZero() && (finalValue.Equal(witness) || finalValue.Equal(witness.Neg()))
	return ok, nil
}
