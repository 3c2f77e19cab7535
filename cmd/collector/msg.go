package main

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xssnick/ton-collector/address"
	"github.com/xssnick/ton-collector/ton/wallet"
)

func (a *app) msgCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "msg [key]",
		Short: "Generate collector message",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.key(args)
			if err != nil {
				return err
			}

			to := a.v.GetString("to")
			if to == "" {
				return fmt.Errorf("destination address is not specified, use --to")
			}

			dst, err := address.ParseAnyAddr(to)
			if err != nil {
				return fmt.Errorf("parse destination %v: %w", to, err)
			}

			params := wallet.MessageParams{
				Key:     key,
				To:      dst,
				Init:    a.v.GetBool("init"),
				Destroy: a.v.GetBool("destroy"),
			}

			for name, val := range map[string]*uint32{
				"seqno": &params.Seqno,
				"id":    &params.WalletID,
				"ttl":   &params.TTL,
			} {
				if *val, err = a.uint32(name); err != nil {
					return err
				}
			}

			msg, err := a.collector().CreateMessage(cmd.Context(), params)
			if err != nil {
				return err
			}

			c, err := msg.ToCell()
			if err != nil {
				return fmt.Errorf("serialize message: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(c.ToBOCWithFlags(true)))
			return err
		},
	}

	addMsgFlags(cmd.Flags())
	cmd.MarkFlagsMutuallyExclusive("init", "seqno")

	return cmd
}

func addMsgFlags(fs *pflag.FlagSet) {
	fs.String("to", "", "destination address, where funds will be collected")
	fs.Bool("init", false, "attach state init to deploy the wallet")
	fs.Bool("destroy", false, "destroy the wallet when its balance becomes zero")
	fs.Uint32("seqno", 0, "message sequence number")
	fs.Uint32("ttl", 60, "message timeout in seconds")
}
