package main

import (
	"context"
	"encoding/base64"
	"log"

	"github.com/xssnick/ton-collector/address"
	"github.com/xssnick/ton-collector/ton/wallet"
)

func main() {
	// hex of ed25519 seed, any 32 random bytes will do for a deposit wallet
	key, err := wallet.ParsePrivateKey("0b4e8ba9b43ae7a45d0cfb6d6b1d5f7dd8d7e4b3a3f5c1a3e1f2a4c6b8d0e2f4")
	if err != nil {
		log.Fatalln("ParsePrivateKey err:", err.Error())
		return
	}

	pub, err := wallet.PublicKey(key)
	if err != nil {
		log.Fatalln("PublicKey err:", err.Error())
		return
	}

	collector := wallet.NewCollector(wallet.CodeV3())

	// every wallet id gives separate deposit address for the same key
	for id := uint32(0); id < 3; id++ {
		addr, err := collector.ComputeAddress(pub, id)
		if err != nil {
			log.Fatalln("ComputeAddress err:", err.Error())
			return
		}
		log.Printf("deposit %d: %s", id, addr.NoBounce().String())
	}

	// first message deploys wallet 1 and sends everything to the hot wallet
	msg, err := collector.CreateMessage(context.Background(), wallet.MessageParams{
		Key:      key,
		To:       address.MustParseAddr("EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqB2N"),
		Init:     true,
		WalletID: 1,
		TTL:      180,
	})
	if err != nil {
		log.Fatalln("CreateMessage err:", err.Error())
		return
	}

	msgCell, err := msg.ToCell()
	if err != nil {
		log.Fatalln("ToCell err:", err.Error())
		return
	}

	// pack message to send later or from other place
	log.Println(base64.StdEncoding.EncodeToString(msgCell.ToBOC()))
}
