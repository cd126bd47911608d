// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package boot

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/outrigdev/iniedit/pkg/logutil"
	"github.com/outrigdev/iniedit/pkg/serverbase"
	"github.com/outrigdev/iniedit/pkg/settings"
	"github.com/outrigdev/iniedit/pkg/web"
	"github.com/outrigdev/iniedit/pkg/workspace"
)

var log = logutil.Component("boot")

type ServerOpts struct {
	ListenAddr string // "" means serverbase.GetDefaultListenAddr()
	Root       string // "" means the last folder from settings

	// OnListen is called with the bound address once the server is listening
	OnListen func(addr net.Addr)
}

// RunServer runs the iniedit web server until ctx is cancelled or the
// process receives SIGINT/SIGTERM
func RunServer(ctx context.Context, opts ServerOpts) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Set up signal handling
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalChan)
	go func() {
		select {
		case sig := <-signalChan:
			log.WithField("signal", sig.String()).Info("received signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	err := serverbase.EnsureHomeDir()
	if err != nil {
		return fmt.Errorf("cannot create iniedit home directory (%s): %w", serverbase.GetIniEditHome(), err)
	}

	lock, err := serverbase.AcquireServerLock()
	if err != nil {
		return fmt.Errorf("error acquiring iniedit lock (another iniedit server is likely running): %w", err)
	}
	defer lock.Close() // the defer statement will keep the lock alive

	store := settings.NewStore(serverbase.GetSettingsPath())
	store.Load()
	root := opts.Root
	if root == "" {
		root, err = store.ClearMissingFolder()
		if err != nil {
			log.WithError(err).Warn("cannot update settings")
		}
	}
	ws := workspace.New("", store)
	if root != "" {
		if err := ws.SetRoot(root); err != nil {
			return err
		}
	}

	listenAddr := opts.ListenAddr
	if listenAddr == "" {
		listenAddr = serverbase.GetDefaultListenAddr()
	}
	listener, err := web.MakeTCPListener("http", listenAddr)
	if err != nil {
		return err
	}
	if opts.OnListen != nil {
		opts.OnListen(listener.Addr())
	}

	srv := web.NewServer(ws, store, serverbase.IsDev())
	log.WithField("root", ws.Root()).Info("iniedit server started")
	err = srv.Run(ctx, listener)
	log.Info("server shutdown complete")
	return err
}
