package sync

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/warp-contracts/token-syncer/src/synchronizer"
	"github.com/warp-contracts/token-syncer/src/utils/config"

	"github.com/stretchr/testify/require"
)

func TestControllerLifecycle(t *testing.T) {
	conf, err := config.Load("")
	require.Nil(t, err)
	conf.Database.Driver = config.DatabaseDriverSqlite
	conf.Database.Path = filepath.Join(t.TempDir(), "token-syncer.db")
	conf.RESTListenAddress = "127.0.0.1:0"
	conf.Gateway.RESTListenAddress = "127.0.0.1:0"
	conf.Synchronizer.InitialOwner = "owner"

	controller, err := NewController(conf)
	require.Nil(t, err)
	require.Nil(t, controller.Start())

	ctx := context.Background()
	err = controller.Synchronizer.RegisterTokenContract(ctx, "owner", "A", "contract-a")
	require.Nil(t, err)

	err = controller.Synchronizer.RegisterTokenContract(ctx, "mallory", "B", "contract-b")
	require.ErrorIs(t, err, synchronizer.ErrNotAuthorized)

	controller.StopWait()

	select {
	case <-controller.CtxRunning.Done():
	default:
		t.Fatal("controller still running")
	}
}
