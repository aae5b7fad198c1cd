package interop

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"

	"github.com/colorfulnotion/neovm/vm/stackitem"
)

func registerCryptoServices(r *Registry) {
	r.Register(&Descriptor{
		Name: "System.Crypto.Sha256", Price: 1 << 15,
		Handler: cryptoSha256,
	})
	r.Register(&Descriptor{
		Name: "System.Crypto.Ripemd160", Price: 1 << 15,
		Handler: cryptoRipemd160,
	})
}

func cryptoSha256(ae *ApplicationEngine) error {
	data, err := ae.PopBytes()
	if err != nil {
		return err
	}
	h := sha256.Sum256(data)
	return ae.PushItem(stackitem.NewByteString(h[:]))
}

func cryptoRipemd160(ae *ApplicationEngine) error {
	data, err := ae.PopBytes()
	if err != nil {
		return err
	}
	h := ripemd160.New()
	h.Write(data)
	return ae.PushItem(stackitem.NewByteString(h.Sum(nil)))
}
