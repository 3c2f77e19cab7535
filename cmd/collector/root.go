package main

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xssnick/ton-collector/ton/wallet"
)

const envPrefix = "COLLECTOR"

var (
	errNoKey        = errors.New("private key is not specified, pass it as argument or with " + envPrefix + "_KEY")
	errInvalidValue = errors.New("invalid value")
)

// app carries state shared by subcommands of one invocation.
type app struct {
	v      *viper.Viper
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{
		v:      viper.New(),
		logger: zap.NewNop(),
	}

	root := &cobra.Command{
		Use:           "collector",
		Short:         "Generate wallet V3 collector messages and addresses",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().String("config", "", "path to config file (yaml, toml or json)")
	root.PersistentFlags().String("log-level", "warn", "logging level")
	root.PersistentFlags().Uint32("id", 0, "wallet id (subwallet)")

	root.AddCommand(a.addrCmd(), a.msgCmd())

	return root
}

func (a *app) init(cmd *cobra.Command) error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %v: %w", path, err)
		}
	}

	lvl, err := zap.ParseAtomicLevel(strings.ToLower(a.v.GetString("log-level")))
	if err != nil {
		return err
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr())),
		lvl,
	)
	a.logger = zap.New(core).Named(cmd.Name())

	return nil
}

// key returns private key from the positional argument or from config.
func (a *app) key(args []string) (ed25519.PrivateKey, error) {
	hexKey := a.v.GetString("key")
	if len(args) > 0 {
		hexKey = args[0]
	}

	if hexKey == "" {
		return nil, errNoKey
	}

	return wallet.ParsePrivateKey(hexKey)
}

func (a *app) collector() *wallet.Collector {
	return wallet.NewCollector(wallet.CodeV3(), wallet.WithLogger(a.logger))
}

// uint32 reads numeric setting from flags, env or config, malformed values are not replaced with zero.
func (a *app) uint32(key string) (uint32, error) {
	v, err := cast.ToUint64E(a.v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("%w of %v: %v", errInvalidValue, key, err)
	}

	if v > math.MaxUint32 {
		return 0, fmt.Errorf("%w of %v: %d does not fit 32 bits", errInvalidValue, key, v)
	}

	return uint32(v), nil
}
