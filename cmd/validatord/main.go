// Command validatord runs a single fquorum validator process: it loads
// a YAML configuration and optional genesis balance sheet, resolves the
// validator's signing key, and serves the JSON-over-HTTP RPC façade
// (spec §6) until interrupted.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cosmossdk.io/log"

	"github.com/blockberries/fquorum/certproc"
	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/rpc"
	"github.com/blockberries/fquorum/runtime"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "validatord:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := runtime.LoadConfig(fs.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	signer, err := resolveSigner(cfg)
	if err != nil {
		return fmt.Errorf("resolving signing key: %w", err)
	}

	logger := log.NewLogger(os.Stderr)

	app, err := runtime.NewApplication(cfg, signer, certproc.NopBroadcaster{}, logger)
	if err != nil {
		return err
	}
	app.Start()
	defer app.Stop()

	srv, err := rpc.NewValidatorServer(app.Validator)
	if err != nil {
		return fmt.Errorf("constructing rpc server: %w", err)
	}
	srv = srv.WithLogger(logger)

	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: srv}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("rpc server listening", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("shutting down")
		return httpServer.Close()
	}
}

// resolveSigner loads the validator's signing key from its configured
// FileKeyStore entry. The keystore passphrase is read from the
// environment rather than a flag or config field so it never lands on
// disk alongside the rest of the configuration.
func resolveSigner(cfg *runtime.Config) (crypto.Signer, error) {
	if cfg.KeyStoreDir == "" {
		return nil, fmt.Errorf("keystore_dir is required")
	}
	passphrase := os.Getenv(cfg.KeyStorePassphraseEnv)
	if passphrase == "" {
		return nil, fmt.Errorf("environment variable %s is empty or unset", cfg.KeyStorePassphraseEnv)
	}

	ks, err := crypto.NewFileKeyStore(cfg.KeyStoreDir, []byte(passphrase))
	if err != nil {
		return nil, err
	}

	encKey, err := ks.Load(cfg.SelfAddress)
	if err != nil {
		return nil, err
	}

	priv, err := crypto.ParsePrivateKey(encKey.Algorithm, encKey.PrivKeyData)
	if err != nil {
		return nil, err
	}

	return crypto.NewSigner(priv), nil
}
