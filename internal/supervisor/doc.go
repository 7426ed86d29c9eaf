// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

/*
Package supervisor runs the correlator's long-lived services under suture v4.

# Tree

	RootSupervisor ("correlator")
	├── CollectionSupervisor ("collection-layer")
	│   └── CollectorService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer is a Layer constant; Add places a service under a layer by name
and AddCollectionService and AddAPIService are shorthands for the two layers.
Crashed services are restarted with suture's backoff. Supervisor events are
logged through sutureslog, which cmd/correlator bridges to zerolog with
logging.NewSlogLogger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddCollectionService(services.NewCollectorService(schedule))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	err = tree.Serve(ctx)

Service wrappers live in the services subpackage.
*/
package supervisor
