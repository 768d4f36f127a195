package monitor

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/vertexhub/securelink/internal/bigint"
	"github.com/vertexhub/securelink/internal/params"
)

// identityQRSize is the rendered QR image width and height in pixels.
const identityQRSize = 256

var two = bigint.FromInt64(2)

// publicVector derives v_1..v_k from the local FFS private key as
// handshake.Prove does (v_i = (s_i^2)^-1 mod N), without the random sign
// Prove applies to each element before sending it, so the operator
// can display the identity this process will prove without exposing the
// private elements themselves.
func publicVector() ([]*bigint.Int, error) {
	v := make([]*bigint.Int, len(params.FFSPrivate))
	for i, s := range params.FFSPrivate {
		sSq, err := s.RaiseMod(two, params.FFSModulus)
		if err != nil {
			return nil, err
		}
		inv, err := sSq.InvertMod(params.FFSModulus)
		if err != nil {
			return nil, err
		}
		v[i] = inv
	}
	return v, nil
}

// GenerateIdentityQRPNG renders the local FFS public identity as a PNG QR
// code, so an operator can pin the expected identity out of band before
// trusting a session.
func GenerateIdentityQRPNG() ([]byte, error) {
	payload, err := IdentityText()
	if err != nil {
		return nil, err
	}

	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("monitor: creating QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(identityQRSize)); err != nil {
		return nil, fmt.Errorf("monitor: encoding QR PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateIdentityQRBase64 is the data-URI form of GenerateIdentityQRPNG.
func GenerateIdentityQRBase64() (string, error) {
	png, err := GenerateIdentityQRPNG()
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// IdentityText renders the local FFS public identity (N, v_1..v_k) as a
// plain-text payload, the string actually encoded into the QR code.
func IdentityText() (string, error) {
	v, err := publicVector()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "N=%s", params.FFSModulus.String())
	for i, vi := range v {
		fmt.Fprintf(&sb, ";v%d=%s", i+1, vi.String())
	}
	return sb.String(), nil
}
