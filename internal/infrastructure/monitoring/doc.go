/*
Package monitoring provides Prometheus metrics for the server.

Each Metrics value owns a private registry. HTTP traffic is recorded by
Middleware, tool calls by Timer, and sandbox denials by RecordAccessDenied.

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "filesystem", "read_file")
	// ... run the tool ...
	timer.Stop("success")
*/
package monitoring
