// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

/*
Package services provides suture.Service wrappers for Newsrec components.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server serving /healthz, /readyz and /metrics
  - Converts ListenAndServe to Serve with a bounded graceful shutdown

Periodic Tasks (TickerService):
  - Runs a task on start and then on every tick
  - Task failures are logged and never crash the service
  - Used for engagement reporting (EngagementReporter.Run), batch
    evaluation (BatchEvaluator.Run) and badger value log GC

Event Consumer (EventConsumerService):
  - Subscribes to the recommendation event topic through watermill
  - Hands every decoded event to a handler
  - Drops redelivered events by event ID

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

# Usage Example

	tree.AddDataService(services.NewTickerService(services.TickerConfig{
	    Name:     "engagement-report",
	    Interval: 15 * time.Minute,
	    Task:     services.NewEngagementReporter(engine, logger).Run,
	}, logger))
*/
package services
