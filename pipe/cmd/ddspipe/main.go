// Copyright 2020 Anapaya Systems
// Copyright 2026 The ddspipe Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ddspipe/ddspipe/pipe"
	"github.com/ddspipe/ddspipe/pipe/config"
	api "github.com/ddspipe/ddspipe/pipe/mgmtapi"
	"github.com/ddspipe/ddspipe/pkg/log"
	"github.com/ddspipe/ddspipe/pkg/monitor"
	"github.com/ddspipe/ddspipe/pkg/payload"
	"github.com/ddspipe/ddspipe/pkg/private/prom"
	"github.com/ddspipe/ddspipe/pkg/private/serrors"
	"github.com/ddspipe/ddspipe/private/app/launcher"
	libconfig "github.com/ddspipe/ddspipe/private/config"
	"github.com/ddspipe/ddspipe/private/env"
)

var globalCfg config.Config

func main() {
	application := launcher.Application{
		TOMLConfig: &globalCfg,
		ShortName:  "DDS Pipe",
		Commands:   []*cobra.Command{newRoutesCommand()},
		Main:       realMain,
	}
	application.Run()
}

func realMain(ctx context.Context) error {
	desc, err := config.LoadDescription(globalCfg.DescriptionFile())
	if err != nil {
		return err
	}
	digest, err := libconfig.Digest(desc)
	if err != nil {
		return serrors.Wrap("computing description digest", err)
	}

	prom.ExportElementID(prometheus.DefaultRegisterer, globalCfg.General.ID)
	metrics := pipe.NewMetrics()
	pool := &payload.FastPool{Allocations: metrics.PayloadAllocations}
	pipe.RegisterPayloadStats(pool)
	counters := monitor.NewCounters()
	mon := monitor.Multi{monitor.NewPrometheus(), counters}

	builder := &config.Builder{Pool: pool, Monitor: mon}
	participants, err := builder.Build(desc)
	if err != nil {
		return serrors.Wrap("creating participants", err)
	}
	p, err := newPipe(desc, participants, pool, metrics, mon)
	if err != nil {
		return err
	}
	defer p.Close()
	p.Enable()

	g, errCtx := errgroup.WithContext(ctx)

	// Initialize and start the management API.
	if globalCfg.API.Addr != "" {
		server := &api.Server{Pipe: p, Counters: counters}
		log.Info("Exposing API", "addr", globalCfg.API.Addr)
		mgmtServer := &http.Server{
			Addr:    globalCfg.API.Addr,
			Handler: api.Handler(server),
		}
		g.Go(func() error {
			defer log.HandlePanic()
			<-errCtx.Done()
			return mgmtServer.Close()
		})
		g.Go(func() error {
			defer log.HandlePanic()
			err := mgmtServer.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return serrors.Wrap("serving management API", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer log.HandlePanic()
		return globalCfg.Metrics.ServePrometheus(errCtx)
	})
	g.Go(func() error {
		defer log.HandlePanic()
		reloads := env.Reloads(errCtx)
		for {
			select {
			case <-errCtx.Done():
				return nil
			case <-reloads:
				digest = reload(p, digest)
			}
		}
	})
	return g.Wait()
}

func newPipe(desc *config.Description, participants *pipe.ParticipantsDatabase,
	pool payload.Pool, metrics *pipe.Metrics, mon monitor.Monitor) (*pipe.Pipe, error) {

	allowed, err := desc.AllowedTopics()
	if err != nil {
		return nil, err
	}
	builtin, err := desc.Builtin()
	if err != nil {
		return nil, err
	}
	rules, err := desc.QoSRules()
	if err != nil {
		return nil, err
	}
	p, err := pipe.New(pipe.Config{
		AllowedTopics:        allowed,
		Routes:               desc.RoutesConfig(),
		TopicRoutes:          desc.TopicRoutesConfig(),
		TopicQoS:             rules,
		BuiltinTopics:        builtin,
		RemoveUnusedEntities: globalCfg.Pipe.RemoveUnusedEntities,
		MaxHistoryDepth:      globalCfg.Pipe.MaxHistoryDepth,
		Threads:              globalCfg.Pipe.Threads,
		ThreadMetrics:        metrics.Threads,
		Monitor:              mon,
		Payloads:             pool,
	}, participants, pipe.NewDiscoveryDatabase())
	if err != nil {
		return nil, serrors.Wrap("creating pipe", err)
	}
	return p, nil
}

// reload applies a changed description to the pipe and returns the digest of
// the description in effect.
func reload(p *pipe.Pipe, current []byte) []byte {
	file := globalCfg.DescriptionFile()
	desc, err := config.LoadDescription(file)
	if err != nil {
		log.Error("Reloading pipe description", "err", err)
		return current
	}
	digest, err := libconfig.Digest(desc)
	if err != nil {
		log.Error("Computing description digest", "err", err)
		return current
	}
	if bytes.Equal(digest, current) {
		log.Info("Pipe description unchanged", "file", file)
		return current
	}
	r, err := desc.Reload()
	if err != nil {
		log.Error("Reloading pipe description", "err", err)
		return current
	}
	if err := p.ReloadConfiguration(r); err != nil {
		log.Error("Reloading pipe configuration", "err", err)
		return current
	}
	log.Info("Pipe description reloaded", "file", file)
	return digest
}
