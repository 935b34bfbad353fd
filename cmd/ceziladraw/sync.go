/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ceziladraw/internal/backend"
	"ceziladraw/internal/config"
	"ceziladraw/internal/storage"
	"log/slog"
)

func cmdSync(ctx context.Context, a *app, args []string) error {
	pos, err := parseFlags(a.flags("sync"), args, 2)
	if err != nil {
		return err
	}
	dir := pos[1]
	switch pos[0] {
	case "push":
		return syncPush(ctx, a, dir)
	case "pull":
		return syncPull(ctx, a, dir)
	}
	return usagef("unknown sync direction %q", pos[0])
}

func syncPush(ctx context.Context, a *app, dir string) error {
	c, err := a.client()
	if err != nil {
		return err
	}
	bh, err := a.openBoard(dir)
	if err != nil {
		return err
	}
	remote, err := c.EnsureBoard(ctx, bh.Meta.ID, bh.Meta.Name)
	if err != nil {
		return err
	}
	data, err := storage.Serialize(snapshotOf(bh.Initial))
	if err != nil {
		return err
	}
	d, err := c.PutBoardData(ctx, remote.ID, data)
	if err != nil {
		return err
	}
	a.withLibrary(ctx, func(lib *storage.Library) error {
		if err := lib.RegisterBoard(ctx, bh, d.ElementCount); err != nil {
			return err
		}
		return lib.SetRemoteID(ctx, bh.Meta.ID, remote.ID)
	})
	a.tel.BoardSynced("push", d.ElementCount)
	a.printf("Pushed %d element(s) to %s (version %d)\n", d.ElementCount, remote.ID, d.Version)
	return nil
}

func syncPull(ctx context.Context, a *app, dir string) error {
	c, err := a.client()
	if err != nil {
		return err
	}
	bh, err := a.openBoard(dir)
	if err != nil {
		return err
	}
	remoteID := bh.Meta.ID
	a.withLibrary(ctx, func(lib *storage.Library) error {
		e, ok, err := lib.Board(ctx, bh.Meta.ID)
		if ok && e.RemoteID != "" {
			remoteID = e.RemoteID
		}
		return err
	})
	d, err := c.PullBoard(ctx, remoteID)
	if errors.Is(err, backend.ErrNotFound) {
		return fmt.Errorf("board %s has no data on the server; push it first", remoteID)
	}
	if err != nil {
		return err
	}
	p, err := storage.ImportBoard(bh, d.Data)
	if err != nil {
		return fmt.Errorf("apply remote board: %w", err)
	}
	a.withLibrary(ctx, func(lib *storage.Library) error {
		if err := lib.RegisterBoard(ctx, bh, len(p.Elements)); err != nil {
			return err
		}
		return lib.SetRemoteID(ctx, bh.Meta.ID, remoteID)
	})
	a.tel.BoardSynced("pull", len(p.Elements))
	a.printf("Pulled %d element(s) from %s (version %d)\n", len(p.Elements), remoteID, d.Version)
	return nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := a.flags("login")
	server := fs.String("server", a.cfg.Backend.BaseURL, "sync server base URL")
	subject := fs.String("subject", "", "account name on the server")
	ttl := fs.Duration("ttl", 0, "token lifetime; zero asks for the server default")
	if _, err := parseFlags(fs, args, 0); err != nil {
		return err
	}
	c := a.newClient(*server, "")
	tok, err := c.IssueToken(ctx, *subject, *ttl)
	if err != nil {
		return err
	}
	cfg := a.cfg
	cfg.Backend.BaseURL = *server
	if err := config.Save(cfg, tok.Token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	a.cfg, a.token = cfg, tok.Token
	a.printf("Logged in to %s (token expires %s)\n", *server, tok.ExpiresAt)
	return nil
}

func cmdLogout(_ context.Context, a *app, args []string) error {
	if _, err := parseFlags(a.flags("logout"), args, 0); err != nil {
		return err
	}
	if err := config.ClearToken(); err != nil {
		return err
	}
	a.token = ""
	a.printf("Logged out\n")
	return nil
}

func cmdServe(ctx context.Context, a *app, args []string) error {
	fs := a.flags("serve")
	memory := fs.Bool("memory", false, "keep boards in memory instead of Postgres")
	dev := fs.Bool("dev", false, "let token requests name any subject (same as CZD_DEV_MODE)")
	if _, err := parseFlags(fs, args, 0); err != nil {
		return err
	}
	cfg, err := backend.LoadConfig()
	if err != nil {
		return err
	}
	if *dev {
		cfg.DevMode = true
	}
	if cfg.DevMode {
		a.log.Warn("dev mode: tokens are issued for any requested subject")
	}
	start := time.Now()
	if *memory {
		a.log.Warn("serving from memory; boards are lost on exit")
		err = backend.Serve(ctx, cfg, backend.NewMemoryRepository())
	} else {
		err = backend.Start(ctx, cfg)
	}
	a.log.Info("server exited", slog.Duration("uptime", time.Since(start)))
	return err
}
