// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

/*
Package supervisor provides process supervision for Newsrec using suture v4.

Every long-running component runs as a suture.Service in a three-layer tree:

	RootSupervisor ("newsrec")
	├── DataSupervisor ("data-layer")
	│   ├── engagement-report   (TickerService)
	│   ├── event-log-gc        (TickerService, badger backend only)
	│   └── batch-evaluation    (EvaluationService, if EVALUATION_ENABLED)
	├── MessagingSupervisor ("messaging-layer")
	│   └── event-consumer      (EventConsumerService, if EVENTS_ENABLED)
	└── APISupervisor ("api-layer")
	    └── http-server         (HTTPServerService)

Crashed services are restarted with backoff. Supervisor events are logged
through sutureslog, which receives a *slog.Logger backed by zerolog (see
logging.NewSlogLogger).

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	return tree.Serve(ctx)

The service implementations live in the services subpackage.
*/
package supervisor
