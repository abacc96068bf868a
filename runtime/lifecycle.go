package runtime

import "fmt"

// Start and Stop bound the process's lifetime for the outer command
// (spec §6 "Exit codes"). The validator core itself has no background
// goroutines to stop — ingress handlers run to completion per call — so
// this only exists to give cmd/validatord a single place to hook
// graceful shutdown of the transport (see rpc.Server).
type Stoppable interface {
	Stop() error
}

// Start logs process start and returns nothing to wait on: the RPC
// transport (rpc.Server) owns the actual listening loop and is started
// separately by the caller, since Application has no opinion on
// transport choice (spec §6: "any transport").
func (a *Application) Start() {
	a.logger.Info("validator application started")
}

// Stop shuts down everything Application owns directly. It does not
// own the transport; callers are responsible for stopping that
// separately (e.g. rpc.Server.Close) before or after calling Stop. When
// the process was configured with data_dir, this saves a final IAVL
// version and marks the IAVL store closed; the GoLevelDB handle opened
// by openAccountStore is not closed here.
func (a *Application) Stop() error {
	a.logger.Info("validator application stopped")
	if a.backing == nil {
		return nil
	}
	if err := a.backing.Flush(); err != nil {
		return fmt.Errorf("runtime: flushing backing store: %w", err)
	}
	return a.backing.Close()
}
