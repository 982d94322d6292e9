package ledger

import (
	"encoding/hex"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/sign/schnorr"
	"go.dedis.ch/kyber/v4/suites"
)

var suite = suites.MustFind("Ed25519")

// Signer holds the schnorr key pair the server signs its journal with.
type Signer struct {
	private kyber.Scalar
	public  kyber.Point
}

// NewSigner generates a fresh key pair.
func NewSigner() *Signer {
	private := suite.Scalar().Pick(suite.RandomStream())
	return &Signer{
		private: private,
		public:  suite.Point().Mul(private, nil),
	}
}

func (s *Signer) Public() kyber.Point {
	return s.public
}

// PublicHex is the hex encoding of the marshalled public key.
func (s *Signer) PublicHex() string {
	b, err := s.public.MarshalBinary()
	if err != nil {
		return ""
	}
	return hex.EncodeToString(b)
}

func (s *Signer) Sign(msg []byte) ([]byte, error) {
	return schnorr.Sign(suite, s.private, msg)
}

// VerifySignature checks sig against msg for the given public key.
func VerifySignature(public kyber.Point, msg, sig []byte) error {
	return schnorr.Verify(suite, public, msg, sig)
}
