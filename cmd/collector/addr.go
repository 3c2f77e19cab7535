package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xssnick/ton-collector/ton/wallet"
)

func (a *app) addrCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addr [key]",
		Short: "Generate target address",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.key(args)
			if err != nil {
				return err
			}

			pub, err := wallet.PublicKey(key)
			if err != nil {
				return err
			}

			id, err := a.uint32("id")
			if err != nil {
				return err
			}

			addr, err := a.collector().ComputeAddress(pub, id)
			if err != nil {
				return err
			}

			out := addr.StringRaw()
			if a.v.GetBool("user-friendly") {
				out = addr.NoBounce().Testnet(a.v.GetBool("testnet")).String()
			}

			a.logger.Debug("address computed", zap.Stringer("address", addr), zap.Uint32("id", id))

			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().Bool("user-friendly", false, "print non-bounceable base64 form instead of raw")
	cmd.Flags().Bool("testnet", false, "set testnet flag of user-friendly form")

	return cmd
}
